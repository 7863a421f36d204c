package repositories

import (
	"errors"

	"github.com/blogem/contacts/database"
)

// ErrNotFound is returned when an identifier does not resolve to a row.
var ErrNotFound = errors.New("not found")

// Repositories struct holds all repository interfaces
type Repositories struct {
	Users UserRepository
	Audit AuditRepository
}

// Factory builds repositories bound to a connection or an open transaction.
type Factory func(db database.DBTX) *Repositories

// NewRepositories creates repositories bound to db, which may be a *sql.DB or a *sql.Tx.
func NewRepositories(db database.DBTX) *Repositories {
	return &Repositories{
		Users: NewUserRepository(db),
		Audit: NewAuditRepository(db),
	}
}
