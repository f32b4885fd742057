package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-task-tracker/config"
	"github.com/oksasatya/go-ddd-task-tracker/internal/container"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/helpers"
)

type testServer struct {
	t   *testing.T
	srv http.Handler
	c   *container.Container
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppName:            "task-tracker-test",
		Env:                "test",
		StorageDriver:      config.StorageMemory,
		JWTSecret:          "router-test-secret",
		JWTAlgorithm:       "HS256",
		SessionTTL:         480 * time.Minute,
		DefaultTTL:         15 * time.Minute,
		BcryptCost:         bcrypt.MinCost,
		CORSAllowedOrigins: "*",
	}
	require.NoError(t, cfg.Validate())
	c, err := container.New(cfg, helpers.NewNopLogger(), container.MemoryStores())
	require.NoError(t, err)
	return &testServer{t: t, srv: New(c), c: c}
}

func (s *testServer) do(method, path, token string, body string, form url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	switch {
	case form != nil:
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case body != "":
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	default:
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.srv.ServeHTTP(w, req)
	return w
}

func creds(email, password string) url.Values {
	return url.Values{"username": {email}, "password": {password}}
}

func (s *testServer) register(email, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", "", creds(email, password))
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &tok))
	require.Equal(s.t, "bearer", tok.TokenType)
	require.NotEmpty(s.t, tok.AccessToken)
	return tok.AccessToken
}

func detail(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var body struct {
		Detail any `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Detail
}

type taskJSON struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsCompleted bool    `json:"is_completed"`
	OwnerID     int64   `json:"owner_id"`
	CreatedAt   string  `json:"created_at"`
}

// ---- auth ----

func TestRegisterTwice(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "pw")

	w := s.do(http.MethodPost, "/api/auth/register", "", "", creds("a@example.com", "pw"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", detail(t, w))
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "right")

	w := s.do(http.MethodPost, "/api/auth/login", "", "", creds("a@example.com", "right"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token_type":"bearer"`)

	for name, form := range map[string]url.Values{
		"wrong password": creds("a@example.com", "wrong"),
		"unknown email":  creds("b@example.com", "right"),
		"email case":     creds("A@example.com", "right"),
	} {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/auth/login", "", "", form)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.Equal(t, "Incorrect email or password", detail(t, w))
		})
	}
}

func TestAuthForms_MissingFields(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/auth/register", "/api/auth/login"} {
		w := s.do(http.MethodPost, path, "", "", url.Values{"username": {"a@example.com"}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, path)
		assert.Equal(t, map[string]any{"password": "field required"}, detail(t, w))
	}
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("a@example.com", "pw")

	w := s.do(http.MethodGet, "/api/auth/me", tok, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "a@example.com", me["email"])
	assert.Equal(t, true, me["is_active"])
	assert.Contains(t, me, "id")
	assert.Contains(t, me, "created_at")
	assert.NotContains(t, w.Body.String(), "$2a$")

	w = s.do(http.MethodGet, "/api/auth/me", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("a@example.com", "pw")

	expired, _, err := s.c.JWT.Issue("a@example.com", helpers.WithLifetime(-time.Minute))
	require.NoError(t, err)
	foreign, err := helpers.NewJWTManager("some-other-secret", "HS256", 0)
	require.NoError(t, err)
	forged, _, err := foreign.Issue("a@example.com")
	require.NoError(t, err)
	ghost, _, err := s.c.JWT.Issue("ghost@example.com")
	require.NoError(t, err)

	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/api/tasks/", ""},
		{http.MethodPost, "/api/tasks/", `{"title":"x"}`},
		{http.MethodPut, "/api/tasks/1", `{"title":"x"}`},
		{http.MethodDelete, "/api/tasks/1", ""},
	}
	tokens := map[string]string{
		"no header":    "",
		"garbage":      "abc.def.ghi",
		"tampered":     tok[:len(tok)-1] + flip(tok[len(tok)-1]),
		"expired":      expired,
		"wrong secret": forged,
		"unknown user": ghost,
	}
	for _, rt := range routes {
		for name, bad := range tokens {
			t.Run(fmt.Sprintf("%s %s %s", rt.method, rt.path, name), func(t *testing.T) {
				w := s.do(rt.method, rt.path, bad, rt.body, nil)
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				assert.Equal(t, "Could not validate credentials", detail(t, w))
			})
		}
	}
}

func flip(b byte) string {
	if b == 'A' {
		return "B"
	}
	return "A"
}

// ---- tasks ----

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("a@example.com", "pw")

	w := s.do(http.MethodPost, "/api/tasks/", tok, `{"title":"buy milk","description":"2 litres"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created taskJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "buy milk", created.Title)
	assert.Equal(t, "2 litres", *created.Description)
	assert.False(t, created.IsCompleted)
	assert.NotEmpty(t, created.CreatedAt)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", created.ID), tok, `{"title":"buy milk","is_completed":true}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated taskJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "2 litres", *updated.Description, "omitted fields are kept")

	w = s.do(http.MethodGet, "/api/tasks/", tok, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []taskJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), tok, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Task deleted"}`, w.Body.String())

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), tok, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", detail(t, w))

	w = s.do(http.MethodGet, "/api/tasks/", tok, "", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestTasksAreIsolatedByOwner(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice@example.com", "pw")
	bob := s.register("bob@example.com", "pw")

	w := s.do(http.MethodPost, "/api/tasks/", alice, `{"title":"alice only"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var task taskJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	w = s.do(http.MethodPut, path, bob, `{"title":"hijacked"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", detail(t, w))

	w = s.do(http.MethodDelete, path, bob, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/tasks/", bob, "", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/tasks/", alice, "", nil)
	var list []taskJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "alice only", list[0].Title)
}

func TestListPagination(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("a@example.com", "pw")
	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/api/tasks/", tok, fmt.Sprintf(`{"title":"t%d"}`, i), nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := s.do(http.MethodGet, "/api/tasks/?skip=1&limit=2", tok, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []taskJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "t1", list[0].Title)
	assert.Equal(t, "t2", list[1].Title)

	for _, q := range []string{"skip=-1", "limit=-1", "skip=abc"} {
		w := s.do(http.MethodGet, "/api/tasks/?"+q, tok, "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, q)
	}
}

func TestTaskValidation(t *testing.T) {
	s := newTestServer(t)
	tok := s.register("a@example.com", "pw")

	tests := []struct {
		name, body string
	}{
		{"missing title", `{"description":"d"}`},
		{"title too long", fmt.Sprintf(`{"title":%q}`, strings.Repeat("t", 101))},
		{"description too long", fmt.Sprintf(`{"title":"t","description":%q}`, strings.Repeat("d", 501))},
		{"bad json", `{"title":`},
		{"wrong type", `{"title":"t","is_completed":"yes"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/tasks/", tok, tt.body, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}

	for _, path := range []string{"/api/tasks/abc", "/api/tasks/0", "/api/tasks/99999"} {
		w := s.do(http.MethodDelete, path, tok, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

// ---- plumbing ----

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/health", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/tasks/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	s.srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/health", "", "", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
