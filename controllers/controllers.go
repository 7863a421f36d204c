package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blogem/contacts/authenticator"
	"github.com/blogem/contacts/middleware"
	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/services"
)

// Controllers holds all controller instances
type Controllers struct {
	Auth   *AuthController
	Users  *UsersController
	Audit  *AuditController
	Health *HealthController
}

// NewControllers creates and initializes all controller instances
func NewControllers(srvs *services.Services, db *sql.DB, sessions *authenticator.SessionManager, log *zap.Logger) (*Controllers, error) {
	html, err := NewHTMLRenderer()
	if err != nil {
		return nil, err
	}

	base := &responder{
		dispatcher: srvs.Dispatcher,
		html:       html,
		json:       JSONRenderer{},
		log:        log.Named("http"),
	}

	return &Controllers{
		Auth:   NewAuthController(sessions, base.log),
		Users:  &UsersController{base},
		Audit:  &AuditController{base},
		Health: &HealthController{db: db},
	}, nil
}

// responder holds what every directory handler needs to run an operation
// and present its result.
type responder struct {
	dispatcher *services.Dispatcher
	html       Renderer
	json       Renderer
	log        *zap.Logger
}

func (c *responder) renderer(r *http.Request) Renderer {
	if middleware.WantsJSON(r) {
		return c.json
	}
	return c.html
}

func (c *responder) render(w http.ResponseWriter, r *http.Request, status int, view string, page *models.PageData) {
	if err := c.renderer(r).Render(w, status, view, page); err != nil {
		c.log.Error("render failed", zap.String("view", view), zap.Error(err))
	}
}

// errorView is the body of every failed request
type errorView struct {
	Status int      `json:"status"`
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (c *responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	view := errorView{Status: status, Error: http.StatusText(status)}

	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		view.Fields = verr.Errors.GetMessages()
	case status == http.StatusNotFound:
		view.Error = "Record not found"
	default:
		c.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	c.render(w, r, status, "error", &models.PageData{
		Title:        view.Error,
		FlashMessage: &models.FlashMessage{Type: "error", Message: view.Error},
		Data:         view,
	})
}

// run dispatches req and writes the failure response itself, returning nil
// when the request failed.
func (c *responder) run(w http.ResponseWriter, r *http.Request, req services.OperationRequest) *services.OperationResult {
	result, err := c.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		c.fail(w, r, err)
		return nil
	}
	return result
}

// parseID reads a positive ID URL parameter. Anything unparseable becomes 0,
// which the services reject.
func parseID(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// pageRequest reads the page number from the {page} URL parameter or the
// page query parameter, and the size from page_size.
func pageRequest(r *http.Request) models.PageRequest {
	raw := chi.URLParam(r, "page")
	if raw == "" {
		raw = r.URL.Query().Get("page")
	}

	return models.PageRequest{
		Page:     parseInt(raw),
		PageSize: parseInt(r.URL.Query().Get("page_size")),
	}
}

// parseInt reads a decimal number, saturating at the int range when it is
// too large. Anything else reads as 0.
func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err == nil {
		return v
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(s, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return 0
}

// userInput holds name and location from a form or JSON body. A field that
// is absent stays nil.
type userInput struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

func parseUserInput(r *http.Request) (*userInput, error) {
	var in userInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return nil, err
		}
		return &in, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	if _, ok := r.PostForm["name"]; ok {
		v := r.PostForm.Get("name")
		in.Name = &v
	}
	if _, ok := r.PostForm["location"]; ok {
		v := r.PostForm.Get("location")
		in.Location = &v
	}
	return &in, nil
}

// HealthController reports liveness of the service and its store
type HealthController struct {
	db *sql.DB
}

// Check handles GET /health
func (h *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status, code := "healthy", http.StatusOK
	if err := h.db.PingContext(r.Context()); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status, "service": "contacts"})
}
