package authenticator

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "contacts_session"
	sessionIssuer     = "contacts"
)

var ErrNoSession = errors.New("no session")

// SessionClaims is the payload of the session cookie
type SessionClaims struct {
	Identity string `json:"identity"`
	jwt.RegisteredClaims
}

// SessionManager issues and reads signed session cookies
type SessionManager struct {
	secret   []byte
	lifetime time.Duration
	secure   bool
}

// NewSessionManager creates a session manager. A non-positive lifetime
// defaults to one hour.
func NewSessionManager(secret string, lifetime time.Duration, secure bool) *SessionManager {
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &SessionManager{secret: []byte(secret), lifetime: lifetime, secure: secure}
}

// Issue signs a session token for identity
func (m *SessionManager) Issue(identity string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates a session token and returns its claims
func (m *SessionManager) Parse(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Identity == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Start sets the session cookie for identity
func (m *SessionManager) Start(w http.ResponseWriter, identity string) error {
	token, err := m.Issue(identity)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.lifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Identity returns the identity of the session cookie on r
func (m *SessionManager) Identity(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", ErrNoSession
	}

	claims, err := m.Parse(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	return claims.Identity, nil
}

// End clears the session cookie
func (m *SessionManager) End(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
