package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blogem/contacts/models"
)

func TestDispatcher(t *testing.T) {
	db := setupTestDB(t)
	svc := NewServices(db, Options{PageSize: 10, MaxPageSize: 100}, zap.NewNop())
	d := svc.Dispatcher
	ctx := context.Background()

	created, err := d.Dispatch(ctx, OperationRequest{Op: OpCreate, Name: strPtr("Alice"), Location: strPtr("Boston")})
	require.NoError(t, err)
	require.NotNil(t, created.User)
	assert.Equal(t, "Added user Alice", created.Message)
	id := created.User.ID

	got, err := d.Dispatch(ctx, OperationRequest{Op: OpGet, ID: id})
	require.NoError(t, err)
	assert.Equal(t, "Boston", got.User.Location)

	updated, err := d.Dispatch(ctx, OperationRequest{Op: OpUpdate, ID: id, Location: strPtr("NYC")})
	require.NoError(t, err)
	assert.Equal(t, "NYC", updated.User.Location)

	list, err := d.Dispatch(ctx, OperationRequest{Op: OpList, Page: models.PageRequest{Page: 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Users.Total)

	search, err := d.Dispatch(ctx, OperationRequest{
		Op:     OpSearch,
		Filter: models.Filter{Field: models.FieldLocation, Term: "nyc"},
	})
	require.NoError(t, err)
	assert.Len(t, search.Users.Items, 1)

	find, err := d.Dispatch(ctx, OperationRequest{Op: OpFind, Filter: models.Filter{Field: models.FieldName, Term: "bob"}})
	require.NoError(t, err)
	assert.Nil(t, find.User)
	assert.Equal(t, "No matching user", find.Message)

	trail, err := d.Dispatch(ctx, OperationRequest{Op: OpUserAudit, ID: id})
	require.NoError(t, err)
	assert.Equal(t, 2, trail.AuditPage.Total)

	entry, err := d.Dispatch(ctx, OperationRequest{Op: OpAuditGet, ID: trail.AuditPage.Items[0].ID})
	require.NoError(t, err)
	assert.Equal(t, id, entry.Audit.UserID)

	deleted, err := d.Dispatch(ctx, OperationRequest{Op: OpDelete, ID: id})
	require.NoError(t, err)
	assert.Equal(t, "Deleted user 1", deleted.Message)

	all, err := d.Dispatch(ctx, OperationRequest{Op: OpAuditList})
	require.NoError(t, err)
	assert.Equal(t, 3, all.AuditPage.Total)
	assert.False(t, all.AuditPage.HasMore)

	_, err = d.Dispatch(ctx, OperationRequest{Op: OpGet, ID: id})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDispatcher_Rejects(t *testing.T) {
	d := NewServices(setupTestDB(t), Options{}, zap.NewNop()).Dispatcher
	ctx := context.Background()

	_, err := d.Dispatch(ctx, OperationRequest{Op: "rename"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = d.Dispatch(ctx, OperationRequest{Op: OpCreate, Name: strPtr("Alice")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = d.Dispatch(ctx, OperationRequest{Op: OpAuditGet, ID: 7})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, OpDelete.IsMutation())
	assert.False(t, OpAuditList.IsMutation())
}

func TestUpdatedMessage(t *testing.T) {
	before := &models.User{ID: 3, Name: "Alice", Location: "Boston"}

	tests := []struct {
		name  string
		after models.User
		want  string
	}{
		{"location", models.User{ID: 3, Name: "Alice", Location: "NYC"}, `Updated user 3: location "Boston" -> "NYC"`},
		{"both", models.User{ID: 3, Name: "Al", Location: "NYC"}, `Updated user 3: name "Alice" -> "Al", location "Boston" -> "NYC"`},
		{"unchanged", *before, "Updated user 3: no changes"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, updatedMessage(before, &tc.after))
		})
	}
}
