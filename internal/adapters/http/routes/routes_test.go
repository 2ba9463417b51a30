package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mfs-service/internal/adapters/http/middleware"
	"mfs-service/internal/adapters/persistence/repositories"
	"mfs-service/internal/config"
	"mfs-service/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminMobile = "01900000000"
	adminEmail  = "admin@mfs.test"
	adminPin    = "98765"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type userBody struct {
	ID      string  `json:"_id"`
	Role    string  `json:"role"`
	Status  string  `json:"status"`
	Balance float64 `json:"balance"`
	Bonus   bool    `json:"bonus"`
	Pin     *string `json:"pin"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: "test-secret"},
		Cookie:  config.CookieConfig{Name: "token", SameSite: "Strict"},
		Admin: config.AdminConfig{
			Name:         "Root",
			MobileNumber: adminMobile,
			Email:        strings.ToUpper(adminEmail),
			Pin:          adminPin,
		},
	}
	log := zap.NewNop()
	repo := repositories.NewMemoryUserRepository()
	require.NoError(t, config.NewSeeder(repo, cfg, log).Run(context.Background()))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(log)})
	middleware.Setup(app, cfg)
	Setup(app, repo, cfg, metrics.New(), log)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func sessionToken(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			assert.True(t, c.HttpOnly)
			return c.Value
		}
	}
	t.Fatal("session cookie not set")
	return ""
}

func login(t *testing.T, app *fiber.App, identifier, pin string) string {
	t.Helper()
	resp, _ := do(t, app, http.MethodPost, "/api/v1/login", fiber.Map{"identifier": identifier, "pin": pin}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return sessionToken(t, resp)
}

func register(t *testing.T, app *fiber.App, mobile, email, role string) string {
	t.Helper()
	resp, env := do(t, app, http.MethodPost, "/api/v1/register", fiber.Map{
		"name": "Test", "mobileNumber": mobile, "email": email, "pin": "12345", "role": role,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var data struct {
		InsertedID string   `json:"insertedId"`
		User       userBody `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.InsertedID)
	assert.Nil(t, data.User.Pin)
	return data.InsertedID
}

func getUser(t *testing.T, app *fiber.App, id, token string) userBody {
	t.Helper()
	resp, env := do(t, app, http.MethodGet, "/api/v1/users/"+id, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		User userBody `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.User
}

func TestActivationFlow(t *testing.T) {
	app := newTestApp(t)

	userID := register(t, app, "01711111111", "alice@mfs.test", "")
	agentID := register(t, app, "01822222222", "bob@mfs.test", "Agent")
	adminToken := login(t, app, adminEmail, adminPin)

	// pending accounts start with zero balance
	u := getUser(t, app, userID, adminToken)
	assert.Equal(t, "pending", u.Status)
	assert.Equal(t, "User", u.Role)
	assert.Zero(t, u.Balance)
	assert.False(t, u.Bonus)

	resp, env := do(t, app, http.MethodPatch, "/api/v1/users/"+userID, fiber.Map{"status": "active"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		MatchedCount  int64   `json:"matchedCount"`
		BonusCredited float64 `json:"bonusCredited"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(1), result.MatchedCount)
	assert.Equal(t, float64(40), result.BonusCredited)

	// a second activation must not pay again
	resp, _ = do(t, app, http.MethodPatch, "/api/v1/users/"+userID, fiber.Map{"status": "active"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	u = getUser(t, app, userID, adminToken)
	assert.Equal(t, "active", u.Status)
	assert.Equal(t, float64(40), u.Balance)
	assert.True(t, u.Bonus)

	resp, _ = do(t, app, http.MethodPatch, "/api/v1/users/"+agentID, fiber.Map{"status": "active"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10000), getUser(t, app, agentID, adminToken).Balance)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "01711111111", "alice@mfs.test", "User")

	resp, env := do(t, app, http.MethodPost, "/api/v1/register", fiber.Map{
		"name": "Again", "mobileNumber": "01711111111", "email": "new@mfs.test", "pin": "1234",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, http.MethodPost, "/api/v1/register", fiber.Map{
		"name": "A", "mobileNumber": "017", "email": "a@mfs.test", "pin": "12",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/v1/register", fiber.Map{
		"name": "A", "mobileNumber": "017", "email": "a@mfs.test", "pin": "1234", "role": "Admin",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "01711111111", "alice@mfs.test", "User")

	resp, _ := do(t, app, http.MethodPost, "/api/v1/login", fiber.Map{"identifier": "01711111111", "pin": "00000"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	resp, _ = do(t, app, http.MethodPost, "/api/v1/login", fiber.Map{"identifier": "ghost@mfs.test", "pin": "12345"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBlockedUserCannotLogin(t *testing.T) {
	app := newTestApp(t)
	id := register(t, app, "01711111111", "alice@mfs.test", "User")
	adminToken := login(t, app, adminMobile, adminPin)

	resp, _ := do(t, app, http.MethodPatch, "/api/v1/users/"+id, fiber.Map{"status": "blocked"}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/v1/login", fiber.Map{"identifier": "alice@mfs.test", "pin": "12345"}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMeWithCookie(t *testing.T) {
	app := newTestApp(t)
	id := register(t, app, "01711111111", "alice@mfs.test", "User")

	resp, _ := do(t, app, http.MethodPost, "/api/v1/login", fiber.Map{"identifier": "01711111111", "pin": "12345"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := sessionToken(t, resp)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var data struct {
		User userBody `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, id, data.User.ID)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, http.MethodPost, "/api/v1/logout", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cleared = c.Value == "" && c.Expires.Before(time.Now())
		}
	}
	assert.True(t, cleared)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	id := register(t, app, "01711111111", "alice@mfs.test", "User")
	userToken := login(t, app, "01711111111", "12345")

	resp, _ := do(t, app, http.MethodGet, "/api/v1/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPatch, "/api/v1/users/"+id, fiber.Map{"status": "active"}, userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/dashboard", nil, userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/users", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestActivatePatchErrors(t *testing.T) {
	app := newTestApp(t)
	id := register(t, app, "01711111111", "alice@mfs.test", "User")
	adminToken := login(t, app, adminEmail, adminPin)

	tests := []struct {
		name string
		id   string
		body interface{}
		want int
	}{
		{"balance is not patchable", id, fiber.Map{"balance": 1000000}, http.StatusBadRequest},
		{"bonus is not patchable", id, fiber.Map{"status": "active", "bonus": false}, http.StatusBadRequest},
		{"unknown status", id, fiber.Map{"status": "frozen"}, http.StatusBadRequest},
		{"unknown role", id, fiber.Map{"role": "Root"}, http.StatusBadRequest},
		{"missing user", "does-not-exist", fiber.Map{"status": "active"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, app, http.MethodPatch, "/api/v1/users/"+tt.id, tt.body, adminToken)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	u := getUser(t, app, id, adminToken)
	assert.Zero(t, u.Balance)
	assert.False(t, u.Bonus)
}

func TestListUsersAndDashboard(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "01711111111", "alice@mfs.test", "User")
	register(t, app, "01822222222", "bob@mfs.test", "Agent")
	adminToken := login(t, app, adminEmail, adminPin)

	resp, env := do(t, app, http.MethodGet, "/api/v1/users?search=018&limit=5", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Data []userBody `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
			Limit int   `json:"limit"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Meta.Total)
	assert.Equal(t, 5, page.Meta.Limit)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Agent", page.Data[0].Role)

	resp, env = do(t, app, http.MethodGet, "/api/v1/users?page=3074457345618258603&limit=10", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page.Data = nil
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(3), page.Meta.Total)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/users?status=frozen", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = do(t, app, http.MethodGet, "/api/v1/dashboard", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		Total   int64 `json:"total"`
		Pending int64 `json:"pending"`
		Admins  int64 `json:"admins"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Admins)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "01711111111", "alice@mfs.test", "User")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `mfs_registrations_total{result="created"} 1`))
}
