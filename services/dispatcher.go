package services

import (
	"context"
	"fmt"

	"github.com/blogem/contacts/models"
)

// Operation names one request the directory can serve.
type Operation string

const (
	OpList      Operation = "list"
	OpSearch    Operation = "search"
	OpFind      Operation = "find"
	OpGet       Operation = "get"
	OpCreate    Operation = "create"
	OpUpdate    Operation = "update"
	OpDelete    Operation = "delete"
	OpAuditList Operation = "audit_list"
	OpAuditGet  Operation = "audit_get"
	OpUserAudit Operation = "user_audit"
)

// IsMutation reports whether op writes to the store.
func (op Operation) IsMutation() bool {
	return op == OpCreate || op == OpUpdate || op == OpDelete
}

// OperationRequest carries the parameters of any operation; each operation
// reads only the fields it needs.
type OperationRequest struct {
	Op       Operation
	ID       int64
	Page     models.PageRequest
	Filter   models.Filter
	Name     *string
	Location *string
}

// OperationResult holds whichever output the operation produced.
type OperationResult struct {
	Op        Operation                  `json:"op"`
	User      *models.User               `json:"user,omitempty"`
	Users     *models.Page[models.User]  `json:"users,omitempty"`
	Audit     *models.Audit              `json:"audit,omitempty"`
	AuditPage *models.Page[models.Audit] `json:"audit_page,omitempty"`
	Message   string                     `json:"message,omitempty"`
}

// Dispatcher routes typed operations to the services.
type Dispatcher struct {
	users UserService
	audit AuditService
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(users UserService, audit AuditService) *Dispatcher {
	return &Dispatcher{users: users, audit: audit}
}

// Dispatch runs req.Op and wraps its output.
func (d *Dispatcher) Dispatch(ctx context.Context, req OperationRequest) (*OperationResult, error) {
	result := &OperationResult{Op: req.Op}
	var err error

	switch req.Op {
	case OpList:
		result.Users, err = d.users.ListUsers(ctx, req.Page)
	case OpSearch:
		result.Users, err = d.users.SearchUsers(ctx, req.Filter, req.Page)
	case OpFind:
		result.User, err = d.users.FindUser(ctx, req.Filter)
		if err == nil && result.User == nil {
			result.Message = "No matching user"
		}
	case OpGet:
		result.User, err = d.users.GetUser(ctx, req.ID)
	case OpCreate:
		form := &models.UserForm{}
		if req.Name != nil {
			form.Name = *req.Name
		}
		if req.Location != nil {
			form.Location = *req.Location
		}
		result.User, err = d.users.CreateUser(ctx, form)
		if err == nil {
			result.Message = fmt.Sprintf("Added user %s", result.User.Name)
		}
	case OpUpdate:
		result.User, err = d.users.UpdateUser(ctx, req.ID, &models.UserUpdateForm{Name: req.Name, Location: req.Location})
		if err == nil {
			result.Message = fmt.Sprintf("Updated user %s", result.User.Name)
		}
	case OpDelete:
		err = d.users.DeleteUser(ctx, req.ID)
		if err == nil {
			result.Message = fmt.Sprintf("Deleted user %d", req.ID)
		}
	case OpAuditList:
		result.AuditPage, err = d.audit.ListEntries(ctx, req.Page)
	case OpAuditGet:
		result.Audit, err = d.audit.GetEntry(ctx, req.ID)
	case OpUserAudit:
		result.AuditPage, err = d.audit.ListEntriesForUser(ctx, req.ID, req.Page)
	default:
		return nil, invalidField("op", fmt.Sprintf("Unknown operation %q", req.Op))
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}
