package services

import (
	"context"

	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/repositories"
)

// AuditService interface defines read access to the audit trail
type AuditService interface {
	ListEntries(ctx context.Context, req models.PageRequest) (*models.Page[models.Audit], error)
	GetEntry(ctx context.Context, id int64) (*models.Audit, error)
	ListEntriesForUser(ctx context.Context, userID int64, req models.PageRequest) (*models.Page[models.Audit], error)
}

type auditService struct {
	repos *repositories.Repositories
	opts  Options
}

// NewAuditService creates a new audit service
func NewAuditService(repos *repositories.Repositories, opts Options) AuditService {
	return &auditService{repos: repos, opts: opts}
}

// ListEntries returns one page of the whole trail, oldest first
func (s *auditService) ListEntries(ctx context.Context, req models.PageRequest) (*models.Page[models.Audit], error) {
	req = s.opts.normalize(req)

	entries, err := s.repos.Audit.List(ctx, req.PageSize+1, req.Offset())
	if err != nil {
		return nil, classify("list audit", err)
	}

	total, err := s.repos.Audit.Count(ctx)
	if err != nil {
		return nil, classify("count audit", err)
	}

	return models.NewPage(entries, req, total), nil
}

// GetEntry retrieves an audit entry by ID
func (s *auditService) GetEntry(ctx context.Context, id int64) (*models.Audit, error) {
	if id <= 0 {
		return nil, invalidField("id", "ID must be a positive number")
	}

	entry, err := s.repos.Audit.GetByID(ctx, id)
	if err != nil {
		return nil, classify("get audit", err)
	}

	return entry, nil
}

// ListEntriesForUser returns one page of a user's trail. The user does not
// have to exist any more.
func (s *auditService) ListEntriesForUser(ctx context.Context, userID int64, req models.PageRequest) (*models.Page[models.Audit], error) {
	if userID <= 0 {
		return nil, invalidField("id", "ID must be a positive number")
	}

	req = s.opts.normalize(req)

	entries, err := s.repos.Audit.ListByUser(ctx, userID, req.PageSize+1, req.Offset())
	if err != nil {
		return nil, classify("list user audit", err)
	}

	total, err := s.repos.Audit.CountByUser(ctx, userID)
	if err != nil {
		return nil, classify("count user audit", err)
	}

	return models.NewPage(entries, req, total), nil
}
