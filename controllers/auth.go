package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/blogem/contacts/authenticator"
)

const (
	stateCookieName    = "contacts_state"
	redirectCookieName = "contacts_redirect"
	stateCookieMaxAge  = 300
)

type AuthController struct {
	sessions *authenticator.SessionManager
	log      *zap.Logger
}

func NewAuthController(sessions *authenticator.SessionManager, log *zap.Logger) *AuthController {
	return &AuthController{sessions: sessions, log: log}
}

// Login initiates the authentication process
func (ac *AuthController) Login(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Generate random state
		state, err := generateRandomState()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Keep the state in a short-lived cookie to validate in callback
		setShortCookie(w, stateCookieName, state)
		if target := r.URL.Query().Get("redirect"); isLocalPath(target) {
			setShortCookie(w, redirectCookieName, target)
		}

		http.Redirect(w, r, auth.GetAuthURL(state), http.StatusTemporaryRedirect)
	}
}

// Callback handles the callback from the identity provider
func (ac *AuthController) Callback(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Verify state
		stored, err := r.Cookie(stateCookieName)
		if err != nil {
			http.Error(w, "State not found", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("state") != stored.Value {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}
		clearCookie(w, stateCookieName)

		// Exchange the code for a token
		token, err := auth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			ac.log.Warn("code exchange failed", zap.Error(err))
			http.Error(w, "Failed to exchange authorization code for a token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.GetClaims(r.Context(), token)
		if err != nil {
			ac.log.Warn("id token verification failed", zap.Error(err))
			http.Error(w, "Failed to verify ID Token", http.StatusUnauthorized)
			return
		}

		identity := claims.Identity()
		if identity == "" {
			http.Error(w, "ID Token carries no identity", http.StatusUnauthorized)
			return
		}

		if err := ac.sessions.Start(w, identity); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		ac.log.Info("user logged in", zap.String("identity", identity))

		target := "/users"
		if c, err := r.Cookie(redirectCookieName); err == nil && isLocalPath(c.Value) {
			target = c.Value
			clearCookie(w, redirectCookieName)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// Logout ends the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.sessions.End(w)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// isLocalPath accepts only same-site absolute paths as redirect targets
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}

func setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1, HttpOnly: true})
}
