package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blogem/contacts/database"
	"github.com/blogem/contacts/models"
)

// AuditRepository handles audit log persistence. Entries are append-only:
// there is no update or delete.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.Audit) error
	GetByID(ctx context.Context, id int64) (*models.Audit, error)
	List(ctx context.Context, limit, offset int) ([]models.Audit, error)
	Count(ctx context.Context) (int, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Audit, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}

type sqliteAuditRepository struct {
	db database.DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db database.DBTX) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

const auditColumns = `id, date, message, user_id, actor`

// Create inserts a new audit log entry and sets its ID
func (r *sqliteAuditRepository) Create(ctx context.Context, entry *models.Audit) error {
	query := `
		INSERT INTO audit (date, message, user_id, actor)
		VALUES (?, ?, ?, ?)
	`

	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	if entry.Actor == "" {
		entry.Actor = models.AnonymousActor
	}

	result, err := r.db.ExecContext(ctx, query,
		entry.Date,
		entry.Message,
		entry.UserID,
		entry.Actor,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByID retrieves an audit entry by ID
func (r *sqliteAuditRepository) GetByID(ctx context.Context, id int64) (*models.Audit, error) {
	var entry models.Audit
	err := r.db.QueryRowContext(ctx, `SELECT `+auditColumns+` FROM audit WHERE id = ?`, id).Scan(
		&entry.ID,
		&entry.Date,
		&entry.Message,
		&entry.UserID,
		&entry.Actor,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audit entry with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entry: %w", err)
	}

	return &entry, nil
}

// List retrieves audit entries oldest first
func (r *sqliteAuditRepository) List(ctx context.Context, limit, offset int) ([]models.Audit, error) {
	query := `SELECT ` + auditColumns + ` FROM audit ORDER BY date ASC, id ASC LIMIT ? OFFSET ?`
	return r.query(ctx, query, limit, offset)
}

// Count returns the total number of audit entries
func (r *sqliteAuditRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// ListByUser retrieves the audit entries of one user oldest first. It works
// for users that no longer exist.
func (r *sqliteAuditRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Audit, error) {
	query := `SELECT ` + auditColumns + ` FROM audit WHERE user_id = ? ORDER BY date ASC, id ASC LIMIT ? OFFSET ?`
	return r.query(ctx, query, userID, limit, offset)
}

// CountByUser returns the number of audit entries of one user
func (r *sqliteAuditRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

func (r *sqliteAuditRepository) query(ctx context.Context, query string, args ...any) ([]models.Audit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Audit
	for rows.Next() {
		var entry models.Audit
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Message, &entry.UserID, &entry.Actor); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}
