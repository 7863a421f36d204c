package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/repositories"
	"github.com/blogem/contacts/userctx"
)

// AuditRecorder appends audit entries. It writes through the repository it
// is handed so the entry lands in the caller's transaction.
type AuditRecorder struct{}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder() *AuditRecorder {
	return &AuditRecorder{}
}

// Record appends an entry about subjectID stamped with the current time and
// the identity found in ctx.
func (r *AuditRecorder) Record(ctx context.Context, repo repositories.AuditRepository, subjectID int64, message string) (*models.Audit, error) {
	entry := &models.Audit{
		Date:    timeNow(),
		Message: message,
		UserID:  subjectID,
		Actor:   userctx.GetIdentity(ctx),
	}

	if err := repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	return entry, nil
}

func createdMessage(u *models.User) string {
	return fmt.Sprintf("Created user %q (id %d) in %s", u.Name, u.ID, u.Location)
}

func deletedMessage(u *models.User) string {
	return fmt.Sprintf("Deleted user %q (id %d)", u.Name, u.ID)
}

// updatedMessage lists the fields whose value changed between before and after.
func updatedMessage(before, after *models.User) string {
	var changes []string
	if before.Name != after.Name {
		changes = append(changes, fmt.Sprintf("name %q -> %q", before.Name, after.Name))
	}
	if before.Location != after.Location {
		changes = append(changes, fmt.Sprintf("location %q -> %q", before.Location, after.Location))
	}

	if len(changes) == 0 {
		return fmt.Sprintf("Updated user %d: no changes", after.ID)
	}
	return fmt.Sprintf("Updated user %d: %s", after.ID, strings.Join(changes, ", "))
}
