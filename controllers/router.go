package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/blogem/contacts/authenticator"
	"github.com/blogem/contacts/middleware"
)

// RouterOptions configures NewRouter. A nil Provider serves every route
// without authentication.
type RouterOptions struct {
	Provider       authenticator.Provider
	Sessions       *authenticator.SessionManager
	RequestTimeout time.Duration
}

// NewRouter configures all routes
func NewRouter(ctrl *Controllers, opts RouterOptions, log *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}
	r.Use(chimw.Compress(5))

	// PUBLIC ROUTES
	r.Get("/health", ctrl.Health.Check)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
	})

	auth := opts.Provider != nil && opts.Sessions != nil
	if auth {
		r.Get("/login", ctrl.Auth.Login(opts.Provider))
		r.Get("/callback", ctrl.Auth.Callback(opts.Provider))
		r.Get("/logout", ctrl.Auth.Logout)
	}

	r.Group(func(r chi.Router) {
		if auth {
			r.Use(middleware.Identify(opts.Sessions))
		}

		r.Get("/users", ctrl.Users.Index)
		r.Get("/users/page/{page}", ctrl.Users.Index)
		r.Get("/users/search/{field}/{term}", ctrl.Users.Search)
		r.Get("/users/find/{field}/{term}", ctrl.Users.Find)
		r.Get("/users/{id}", ctrl.Users.Show)
		r.Get("/users/{id}/audit", ctrl.Audit.ForUser)

		r.Get("/audit", ctrl.Audit.Index)
		r.Get("/audit/page/{page}", ctrl.Audit.Index)
		r.Get("/audit/{id}", ctrl.Audit.Show)
	})

	// PROTECTED ROUTES (authentication required when configured)
	r.Group(func(r chi.Router) {
		if auth {
			r.Use(middleware.RequireAuth(opts.Sessions, log))
		}

		r.Post("/users", ctrl.Users.Create)
		r.Post("/users/{id}", ctrl.Users.Update)
		r.Post("/users/{id}/delete", ctrl.Users.Delete)
	})

	return r
}
