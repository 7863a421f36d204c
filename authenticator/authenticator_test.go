package authenticator

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsIdentity(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   string
	}{
		{"email first", Claims{"email": "a@example.com", "name": "Alice", "sub": "1"}, "a@example.com"},
		{"name fallback", Claims{"email": "", "name": "Alice", "sub": "1"}, "Alice"},
		{"subject fallback", Claims{"sub": "auth|1"}, "auth|1"},
		{"nothing", Claims{"email": 5}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.claims.Identity())
		})
	}
}

func TestSessionManager_RoundTrip(t *testing.T) {
	m := NewSessionManager("secret", time.Minute, true)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(rec, "admin@example.com"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	identity, err := m.Identity(req)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", identity)
}

func TestSessionManager_Rejects(t *testing.T) {
	m := NewSessionManager("secret", time.Minute, false)

	_, err := m.Identity(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)

	forged, err := NewSessionManager("other", time.Minute, false).Issue("mallory")
	require.NoError(t, err)
	_, err = m.Parse(forged)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Identity: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    sessionIssuer,
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	_, err = m.Identity(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionManager_End(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSessionManager("secret", 0, false).End(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}
