package services

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/repositories"
)

var timeNow = func() time.Time {
	return time.Now().UTC()
}

// Options tunes listing behaviour.
type Options struct {
	PageSize    int
	MaxPageSize int
}

func (o Options) normalize(req models.PageRequest) models.PageRequest {
	return req.Normalize(o.PageSize, o.MaxPageSize)
}

// Services holds all service instances
type Services struct {
	Users      UserService
	Audit      AuditService
	Dispatcher *Dispatcher
}

// NewServices creates and initializes all service instances
func NewServices(db *sql.DB, opts Options, log *zap.Logger) *Services {
	recorder := NewAuditRecorder()
	users := NewUserService(db, repositories.NewRepositories, recorder, opts, log)
	audit := NewAuditService(repositories.NewRepositories(db), opts)

	return &Services{
		Users:      users,
		Audit:      audit,
		Dispatcher: NewDispatcher(users, audit),
	}
}
