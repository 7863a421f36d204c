package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blogem/contacts/authenticator"
	"github.com/blogem/contacts/database"
	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/services"
)

type testServer struct {
	router   *chi.Mux
	sessions *authenticator.SessionManager
}

func newTestServer(t *testing.T, provider authenticator.Provider) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "controllers_test.db")

	db, err := database.InitializeDatabase(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srvs := services.NewServices(db, services.Options{PageSize: 2, MaxPageSize: 10}, zap.NewNop())
	sessions := authenticator.NewSessionManager("secret", time.Hour, false)

	ctrl, err := NewControllers(srvs, db, sessions, zap.NewNop())
	require.NoError(t, err)

	router := NewRouter(ctrl, RouterOptions{Provider: provider, Sessions: sessions, RequestTimeout: 5 * time.Second}, zap.NewNop())
	return &testServer{router: router, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

var (
	jsonAccept = map[string]string{"Accept": "application/json"}
	jsonBody   = map[string]string{"Accept": "application/json", "Content-Type": "application/json"}
	formBody   = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
)

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestUsersLifecycle_JSON(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/users", `{"name":"Alice","location":"Boston"}`, jsonBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[services.OperationResult](t, rec)
	require.NotNil(t, created.User)
	assert.Equal(t, int64(1), created.User.ID)

	rec = s.do(t, http.MethodPost, "/users/1", `{"location":"NYC"}`, jsonBody)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[services.OperationResult](t, rec)
	assert.Equal(t, "Alice", updated.User.Name)
	assert.Equal(t, "NYC", updated.User.Location)

	rec = s.do(t, http.MethodGet, "/users/1?format=json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NYC", decode[services.OperationResult](t, rec).User.Location)

	rec = s.do(t, http.MethodPost, "/users/1/delete", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/1", "", jsonAccept)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/1/audit", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	trail := decode[services.OperationResult](t, rec)
	require.NotNil(t, trail.AuditPage)
	assert.Equal(t, 3, trail.AuditPage.Total)
	assert.Equal(t, "anonymous", trail.AuditPage.Items[0].Actor)
}

func TestUsersValidation_JSON(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/users", `{"name":"","location":"Boston"}`, jsonBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorView](t, rec)
	assert.Equal(t, []string{"Name is required"}, body.Fields)

	rec = s.do(t, http.MethodPost, "/users/abc", `{"name":"x"}`, jsonBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/9", `{"name":"x"}`, jsonBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/search/email/x", "", jsonAccept)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersPaginationAndSearch(t *testing.T) {
	s := newTestServer(t, nil)
	for _, u := range []struct{ name, location string }{
		{"Alice", "Boston"}, {"Bob", "Austin"}, {"alicia", "Boise"}, {"Dave", "100% Denver"},
	} {
		form := url.Values{"name": {u.name}, "location": {u.location}}.Encode()
		rec := s.do(t, http.MethodPost, "/users", form, formBody)
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/users/page/2", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[services.OperationResult](t, rec).Users
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)
	assert.Equal(t, 4, page.Total)

	rec = s.do(t, http.MethodGet, "/users/page/9", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[services.OperationResult](t, rec).Users.Items)

	for _, target := range []string{
		"/users/page/1000000000000000000",
		"/users/page/99999999999999999999999",
		"/users/search/name/ALI?page=1000000000000000000",
	} {
		rec = s.do(t, http.MethodGet, target, "", jsonAccept)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Empty(t, decode[services.OperationResult](t, rec).Users.Items, target)
	}

	rec = s.do(t, http.MethodGet, "/users/search/name/ALI", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[services.OperationResult](t, rec).Users.Total)

	rec = s.do(t, http.MethodGet, "/users/search/name/ALI?case_sensitive=true", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[services.OperationResult](t, rec).Users.Total)

	rec = s.do(t, http.MethodGet, "/users/search/location/100%25%20D", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[services.OperationResult](t, rec).Users.Total)

	rec = s.do(t, http.MethodGet, "/users/find/location/bo", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice", decode[services.OperationResult](t, rec).User.Name)

	rec = s.do(t, http.MethodGet, "/users/find/name/zed", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[services.OperationResult](t, rec).User)
}

func TestEmptyListings_HTML(t *testing.T) {
	s := newTestServer(t, nil)

	for _, target := range []string{"/users", "/audit", "/users/7/audit"} {
		rec := s.do(t, http.MethodGet, target, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), " of 0", target)
	}

	rec := s.do(t, http.MethodGet, "/users", "", nil)
	assert.Contains(t, rec.Body.String(), "No users found")
}

func TestUsers_HTML(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	form := url.Values{"name": {"Alice"}, "location": {"Boston"}}.Encode()
	rec = s.do(t, http.MethodPost, "/users", form, formBody)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/1", rec.Header().Get("Location"))

	rec = s.do(t, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Alice")
	assert.Contains(t, rec.Body.String(), "1 users, page 1 of 1")

	rec = s.do(t, http.MethodGet, "/users/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/users/1/delete"`)

	rec = s.do(t, http.MethodGet, "/users?field=name&term=Ali", "", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/search/name/Ali", rec.Header().Get("Location"))

	rec = s.do(t, http.MethodPost, "/users", url.Values{"name": {"Bob"}}.Encode(), formBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Location is required")

	rec = s.do(t, http.MethodGet, "/audit", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Created user")

	rec = s.do(t, http.MethodGet, "/audit/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/audit/42", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&services.ValidationError{Errors: models.ValidationErrors{{Field: "name"}}}))
	assert.Equal(t, http.StatusNotFound, statusFor(services.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(services.ErrStoreUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

type fakeProvider struct {
	claims authenticator.Claims
}

func (p *fakeProvider) GetAuthURL(state string) string {
	return "https://issuer.example.com/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) ExchangeCode(_ context.Context, code string) (*authenticator.Token, error) {
	if code != "good" {
		return nil, errors.New("bad code")
	}
	return &authenticator.Token{IDToken: "id"}, nil
}

func (p *fakeProvider) GetClaims(context.Context, *authenticator.Token) (authenticator.Claims, error) {
	return p.claims, nil
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, &fakeProvider{claims: authenticator.Claims{"email": "admin@example.com", "sub": "1"}})

	// Writes need a session
	rec := s.do(t, http.MethodPost, "/users", `{"name":"Alice","location":"Boston"}`, jsonBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Reads stay public
	rec = s.do(t, http.MethodGet, "/users", "", jsonAccept)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/login?redirect=/users/1", "", nil)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	cookies := rec.Result().Cookies()
	req := httptest.NewRequest(http.MethodGet, "/callback?code=good&state="+url.QueryEscape(state), nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/1", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == authenticator.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	req = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Alice","location":"Boston"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/audit/1", "", jsonAccept)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@example.com", decode[services.OperationResult](t, rec).Audit.Actor)
}

func TestAuthCallback_Rejects(t *testing.T) {
	s := newTestServer(t, &fakeProvider{claims: authenticator.Claims{}})

	rec := s.do(t, http.MethodGet, "/callback?code=good&state=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/callback?code=good&state=other", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "x"})
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/callback?code=bad&state=x", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "x"})
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/callback?code=good&state=x", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "x"})
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "claims without identity")
}

func TestIsLocalPath(t *testing.T) {
	assert.True(t, isLocalPath("/users/1"))
	assert.False(t, isLocalPath("//evil.example.com"))
	assert.False(t, isLocalPath("https://evil.example.com"))
	assert.False(t, isLocalPath(""))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 12, parseInt("12"))
	assert.Equal(t, 0, parseInt("abc"))
	assert.Equal(t, 0, parseInt(""))
	assert.Equal(t, math.MaxInt, parseInt("99999999999999999999999"))
	assert.Equal(t, math.MinInt, parseInt("-99999999999999999999999"))
}
