package services

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/blogem/contacts/database"
	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/repositories"
)

// UserService interface defines directory business logic
type UserService interface {
	ListUsers(ctx context.Context, req models.PageRequest) (*models.Page[models.User], error)
	SearchUsers(ctx context.Context, filter models.Filter, req models.PageRequest) (*models.Page[models.User], error)
	FindUser(ctx context.Context, filter models.Filter) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, form *models.UserForm) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, form *models.UserUpdateForm) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// userService implements UserService interface
type userService struct {
	db       *sql.DB
	repos    repositories.Factory
	recorder *AuditRecorder
	opts     Options
	log      *zap.Logger
}

// NewUserService creates a new user service. Reads use repositories bound to
// db; every mutation runs in its own transaction together with its audit entry.
func NewUserService(db *sql.DB, repos repositories.Factory, recorder *AuditRecorder, opts Options, log *zap.Logger) UserService {
	return &userService{
		db:       db,
		repos:    repos,
		recorder: recorder,
		opts:     opts,
		log:      log.Named("users"),
	}
}

// ListUsers returns one page of all users ordered by ID
func (s *userService) ListUsers(ctx context.Context, req models.PageRequest) (*models.Page[models.User], error) {
	return s.SearchUsers(ctx, models.Filter{}, req)
}

// SearchUsers returns one page of users matching filter. No match yields an
// empty page; a page past the end is empty as well.
func (s *userService) SearchUsers(ctx context.Context, filter models.Filter, req models.PageRequest) (*models.Page[models.User], error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}

	req = s.opts.normalize(req)
	repo := s.repos(s.db).Users

	users, err := repo.List(ctx, filter, req.PageSize+1, req.Offset())
	if err != nil {
		return nil, classify("list users", err)
	}

	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, classify("count users", err)
	}

	return models.NewPage(users, req, total), nil
}

// FindUser returns the first user matching filter, or nil when none does
func (s *userService) FindUser(ctx context.Context, filter models.Filter) (*models.User, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}

	users, err := s.repos(s.db).Users.List(ctx, filter, 1, 0)
	if err != nil {
		return nil, classify("find user", err)
	}
	if len(users) == 0 {
		return nil, nil
	}

	return &users[0], nil
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, invalidField("id", "ID must be a positive number")
	}

	user, err := s.repos(s.db).Users.GetByID(ctx, id)
	if err != nil {
		return nil, classify("get user", err)
	}

	return user, nil
}

// CreateUser validates the form, stores the user and records its creation
func (s *userService) CreateUser(ctx context.Context, form *models.UserForm) (*models.User, error) {
	form.Normalize()
	if errs := form.Validate(); errs.HasErrors() {
		return nil, newValidationError(errs)
	}

	user := &models.User{
		Name:        form.Name,
		Location:    form.Location,
		DateCreated: timeNow(),
	}

	var entry *models.Audit
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		repos := s.repos(tx)

		// The insert assigns the ID the audit entry refers to.
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}

		var err error
		entry, err = s.recorder.Record(ctx, repos.Audit, user.ID, createdMessage(user))
		return err
	})
	if err != nil {
		return nil, classify("create user", err)
	}

	s.log.Info("user created", zap.Int64("user_id", user.ID), zap.Int64("audit_id", entry.ID))
	return user, nil
}

// UpdateUser overwrites the provided fields and records what changed
func (s *userService) UpdateUser(ctx context.Context, id int64, form *models.UserUpdateForm) (*models.User, error) {
	if id <= 0 {
		return nil, invalidField("id", "ID must be a positive number")
	}

	form.Normalize()
	if errs := form.Validate(); errs.HasErrors() {
		return nil, newValidationError(errs)
	}

	var updated *models.User
	var entry *models.Audit
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		repos := s.repos(tx)

		existing, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}

		next := *existing
		if form.Name != nil {
			next.Name = *form.Name
		}
		if form.Location != nil {
			next.Location = *form.Location
		}

		if err := repos.Users.Update(ctx, &next); err != nil {
			return err
		}

		entry, err = s.recorder.Record(ctx, repos.Audit, id, updatedMessage(existing, &next))
		if err != nil {
			return err
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, classify("update user", err)
	}

	s.log.Info("user updated", zap.Int64("user_id", id), zap.Int64("audit_id", entry.ID))
	return updated, nil
}

// DeleteUser removes a user and records the deletion. The audit entry keeps
// the name captured before removal.
func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidField("id", "ID must be a positive number")
	}

	var entry *models.Audit
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		repos := s.repos(tx)

		existing, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := repos.Users.Delete(ctx, id); err != nil {
			return err
		}

		entry, err = s.recorder.Record(ctx, repos.Audit, id, deletedMessage(existing))
		return err
	})
	if err != nil {
		return classify("delete user", err)
	}

	s.log.Info("user deleted", zap.Int64("user_id", id), zap.Int64("audit_id", entry.ID))
	return nil
}

func checkFilter(filter models.Filter) error {
	if filter.IsEmpty() {
		return nil
	}
	if _, err := models.ParseSearchField(string(filter.Field)); err != nil {
		return invalidField("field", "Search field must be name or location")
	}
	return nil
}
