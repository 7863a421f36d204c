package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/blogem/contacts/authenticator"
	"github.com/blogem/contacts/userctx"
)

// Identify places the session identity, if any, in the request context.
// Requests without a valid session continue as anonymous.
func Identify(sessions *authenticator.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := sessions.Identity(r); err == nil {
				r = r.WithContext(userctx.SetIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth ensures the user is authenticated. Browsers are redirected to
// /login with the intended destination, API clients get 401.
func RequireAuth(sessions *authenticator.SessionManager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := sessions.Identity(r)
			if err != nil {
				log.Debug("unauthenticated request", zap.String("path", r.URL.Path), zap.Error(err))

				if WantsJSON(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"error":"authentication required"}`))
					return
				}

				http.Redirect(w, r, "/login?redirect="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(userctx.SetIdentity(r.Context(), identity)))
		})
	}
}

// WantsJSON reports whether the client asked for a JSON response
func WantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
