package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domuser "example.com/user-admin/internal/domain/user"
	"example.com/user-admin/internal/infra/persistence/jsonfile"
	"example.com/user-admin/internal/infra/security"
	"example.com/user-admin/internal/logger"
	useruc "example.com/user-admin/internal/usecase/user"
)

func newTestAPI(t *testing.T, delay time.Duration, tokens TokenParser) (*API, *jsonfile.UserRepository) {
	t.Helper()
	repo, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	api := NewAPI(Dependencies{
		UserService:  useruc.NewService(repo),
		TokenService: tokens,
		Delay:        delay,
		Logger:       logger.Discard(),
	})
	return api, repo
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) domuser.User {
	t.Helper()
	var u domuser.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	return u
}

func TestUsersLifecycle(t *testing.T) {
	api, _ := newTestAPI(t, 0, nil)
	h := api.Router()

	rec := doJSON(t, h, http.MethodGet, "/users", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Bob", "email": "b@x.com", "role": "Admin",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bob := decodeUser(t, rec)
	require.Equal(t, int64(1), bob.ID)

	rec = doJSON(t, h, http.MethodGet, "/users/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, bob, decodeUser(t, rec))

	rec = doJSON(t, h, http.MethodPatch, "/users/1", map[string]any{
		"id": 77, "name": "Robert",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, domuser.User{ID: 1, Name: "Robert", Email: "b@x.com", Role: domuser.RoleAdmin}, decodeUser(t, rec))

	rec = doJSON(t, h, http.MethodDelete, "/users/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/users/1", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, "/users/1", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateUser_Failures(t *testing.T) {
	api, _ := newTestAPI(t, 0, nil)
	h := api.Router()

	rec := doJSON(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Bob", "email": "b@x.com", "role": "Admin",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Bobby", "email": "b@x.com", "role": "User",
	}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "email is already in use")

	rec = doJSON(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Eve", "email": "e@x.com", "role": "Owner",
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/users", map[string]string{
		"name": "Eve", "email": "not-an-email", "role": "User",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/users", map[string]string{"name": "Eve"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUser_Failures(t *testing.T) {
	api, repo := newTestAPI(t, 0, nil)
	h := api.Router()
	ctx := context.Background()
	_, err := repo.Create(ctx, domuser.Candidate{Name: "Bob", Email: "b@x.com", Role: domuser.RoleAdmin})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domuser.Candidate{Name: "Ann", Email: "a@x.com", Role: domuser.RoleUser})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPatch, "/users/2", map[string]string{"email": "b@x.com"}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/users/2", map[string]string{"role": "user"}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/users/abc", map[string]string{"name": "x"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/users/9", map[string]string{"name": "x"}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers_RoleAndQuery(t *testing.T) {
	api, repo := newTestAPI(t, 0, nil)
	h := api.Router()
	ctx := context.Background()
	_, _ = repo.Create(ctx, domuser.Candidate{Name: "Bob", Email: "b@x.com", Role: domuser.RoleAdmin})
	_, _ = repo.Create(ctx, domuser.Candidate{Name: "Ann", Email: "a@x.com", Role: domuser.RoleUser})

	rec := doJSON(t, h, http.MethodGet, "/users?role=Admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":1,"name":"Bob","email":"b@x.com","role":"Admin"}]`, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/users?q=a%40x", nil, nil)
	require.JSONEq(t, `[{"id":2,"name":"Ann","email":"a@x.com","role":"User"}]`, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/users?role=Root", nil, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDelayMiddleware(t *testing.T) {
	api, _ := newTestAPI(t, 60*time.Millisecond, nil)
	h := api.Router()

	start := time.Now()
	rec := doJSON(t, h, http.MethodGet, "/users", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)

	start = time.Now()
	rec = doJSON(t, h, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Less(t, time.Since(start), 60*time.Millisecond)
}

func TestDelayMiddleware_CancelledRequestIsDropped(t *testing.T) {
	api, repo := newTestAPI(t, time.Hour, nil)
	h := api.Router()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	body := strings.NewReader(`{"name":"Bob","email":"b@x.com","role":"Admin"}`)
	req := httptest.NewRequest(http.MethodPost, "/users", body).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	users, err := repo.List(context.Background(), domuser.ListUsersFilter{})
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestAuth_MutationsNeedAdminToken(t *testing.T) {
	tokens := security.NewJWTService("test-secret", time.Hour)
	api, _ := newTestAPI(t, 0, tokens)
	h := api.Router()
	body := map[string]string{"name": "Bob", "email": "b@x.com", "role": "Admin"}

	rec := doJSON(t, h, http.MethodPost, "/users", body, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken, err := tokens.GenerateToken("someone", domuser.RoleUser)
	require.NoError(t, err)
	rec = doJSON(t, h, http.MethodPost, "/users", body, http.Header{"Authorization": {"Bearer " + userToken}})
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := tokens.GenerateToken("console", domuser.RoleAdmin)
	require.NoError(t, err)
	rec = doJSON(t, h, http.MethodPost, "/users", body, http.Header{"Authorization": {"Bearer " + adminToken}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/users", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api, _ := newTestAPI(t, 0, nil)
	h := api.Router()

	doJSON(t, h, http.MethodGet, "/users", nil, nil)
	rec := doJSON(t, h, http.MethodGet, "/metrics", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `userstore_http_requests_total{method="GET",route="/users`)
	require.Contains(t, rec.Body.String(), `status="200"`)
}

func TestBlankNameIsRejected(t *testing.T) {
	api, repo := newTestAPI(t, 0, nil)
	h := api.Router()

	rec := doJSON(t, h, http.MethodPost, "/users", map[string]string{
		"name": "   ", "email": "e@x.com", "role": "User",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "name is required")

	users, err := repo.List(context.Background(), domuser.ListUsersFilter{})
	require.NoError(t, err)
	require.Empty(t, users)

	_, err = repo.Create(context.Background(), domuser.Candidate{Name: "Eve", Email: "e@x.com", Role: domuser.RoleUser})
	require.NoError(t, err)

	rec = doJSON(t, h, http.MethodPatch, "/users/1", map[string]string{"name": " "}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	u, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Eve", u.Name)
}

func TestCreateUser_TrimsFields(t *testing.T) {
	api, _ := newTestAPI(t, 0, nil)
	h := api.Router()

	rec := doJSON(t, h, http.MethodPost, "/users", map[string]string{
		"name": "  Eve ", "email": " e@x.com ", "role": " User",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, domuser.User{ID: 1, Name: "Eve", Email: "e@x.com", Role: domuser.RoleUser}, decodeUser(t, rec))
}

func TestAccessLogIsStructured(t *testing.T) {
	var buf bytes.Buffer
	repo, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	api := NewAPI(Dependencies{
		UserService: useruc.NewService(repo),
		Logger:      logger.New("userstore", slog.LevelInfo, &buf),
	})

	rec := doJSON(t, api.Router(), http.MethodGet, "/users/9", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		if e["msg"] == "http_request" {
			entry = e
		}
	}
	require.NotNil(t, entry, buf.String())
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, "GET", entry["method"])
	require.Equal(t, "/users/9", entry["path"])
	require.EqualValues(t, 404, entry["status"])
	require.Equal(t, "userstore", entry["service"])
	require.NotEmpty(t, entry["request_id"])
}
