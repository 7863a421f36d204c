package controllers

import (
	"fmt"
	"net/http"

	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/services"
)

// AuditController handles audit trail requests
type AuditController struct {
	*responder
}

// Index handles GET /audit and GET /audit/page/{page}
func (c *AuditController) Index(w http.ResponseWriter, r *http.Request) {
	result := c.run(w, r, services.OperationRequest{Op: services.OpAuditList, Page: pageRequest(r)})
	if result == nil {
		return
	}

	c.render(w, r, http.StatusOK, "audit", &models.PageData{
		Title:       "Audit log",
		CurrentPage: "audit",
		Data:        result,
		PagePath:    "/audit/page/",
	})
}

// Show handles GET /audit/{id}
func (c *AuditController) Show(w http.ResponseWriter, r *http.Request) {
	result := c.run(w, r, services.OperationRequest{Op: services.OpAuditGet, ID: parseID(r, "id")})
	if result == nil {
		return
	}

	c.render(w, r, http.StatusOK, "audit_entry", &models.PageData{
		Title:       fmt.Sprintf("Audit entry %d", result.Audit.ID),
		CurrentPage: "audit",
		Data:        result,
	})
}

// ForUser handles GET /users/{id}/audit. It also serves users that have
// been deleted.
func (c *AuditController) ForUser(w http.ResponseWriter, r *http.Request) {
	id := parseID(r, "id")
	result := c.run(w, r, services.OperationRequest{Op: services.OpUserAudit, ID: id, Page: pageRequest(r)})
	if result == nil {
		return
	}

	c.render(w, r, http.StatusOK, "audit", &models.PageData{
		Title:       fmt.Sprintf("Audit log of user %d", id),
		CurrentPage: "audit",
		Data:        result,
		PagePath:    r.URL.EscapedPath() + "?page=",
	})
}
