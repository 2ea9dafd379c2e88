package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"recon-backend/internal/audit"
	"recon-backend/internal/config"
	"recon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AuditLog{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             testSecret,
		TokenExpiresInHours:   1,
		LoginRateLimit:        100,
		LoginRateWindow:       time.Minute,
		AllowExportsForReader: true,
	}
}

func newTestApp(cfg *config.Config, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	api := app.Group("/api")
	api.Post("/auth/register-admin", RegisterAdminHandler(db, audit.NewRecorder(db)))
	api.Post("/auth/login", LoginRateLimiter(cfg), LoginHandler(cfg, db))
	api.Post("/auth/logout", LogoutHandler())

	protected := api.Group("", JWTMiddleware(cfg, db))
	protected.Get("/auth/me", MeHandler())
	protected.Get("/export/ping", RequireExport(cfg), func(c *fiber.Ctx) error { return c.SendString("ok") })
	admin := protected.Group("/admin", RequireRole(models.RoleAdmin))
	admin.Post("/users", CreateUserHandler(db, audit.NewRecorder(db)))
	admin.Get("/users", ListUsersHandler(db))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := postJSON(t, app, "/api/auth/login", LoginRequest{Username: username, Password: password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Token     string     `json:"token"`
		ExpiresIn int        `json:"expires_in"`
		User      PublicUser `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	assert.Equal(t, 3600, body.ExpiresIn)
	return body.Token
}

func mustCreate(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, NewUser{Username: username, Password: "s3cret-pass", Role: role})
	require.NoError(t, err)
	return u
}

func TestCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, db, NewUser{Username: " ", Password: "s3cret-pass", Role: models.RoleReader})
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = CreateUser(ctx, db, NewUser{Username: "bob", Password: "short", Role: models.RoleReader})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = CreateUser(ctx, db, NewUser{Username: "bob", Password: "s3cret-pass", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	u, err := CreateUser(ctx, db, NewUser{Username: " Bob ", Password: "s3cret-pass", Role: models.RoleReader})
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.True(t, u.Enabled)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.True(t, CheckPassword(u, "s3cret-pass"))

	_, err = CreateUser(ctx, db, NewUser{Username: "BOB", Password: "s3cret-pass", Role: models.RoleEditor})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterAdminOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(testConfig(), db)

	resp := postJSON(t, app, "/api/auth/register-admin", RegisterAdminRequest{Username: "root", Password: "s3cret-pass"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/register-admin", RegisterAdminRequest{Username: "other", Password: "s3cret-pass"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRegisterAdminConcurrentRequestsCreateOneAdmin(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(testConfig(), db)

	const n = 5
	codes := make(chan int, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, _ := json.Marshal(RegisterAdminRequest{Username: fmt.Sprintf("root%d", i), Password: "s3cret-pass"})
			req := httptest.NewRequest(fiber.MethodPost, "/api/auth/register-admin", bytes.NewReader(raw))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			resp, err := app.Test(req, -1)
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
			codes <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(codes)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	created, forbidden := 0, 0
	for code := range codes {
		switch code {
		case fiber.StatusCreated:
			created++
		case fiber.StatusForbidden:
			forbidden++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, forbidden)

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error)
	assert.Equal(t, int64(1), admins)
}

func TestLoginAndMe(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(testConfig(), db)
	mustCreate(t, db, "alice", models.RoleEditor)

	token := login(t, app, "alice", "s3cret-pass")

	resp := get(t, app, "/api/auth/me", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		User PublicUser `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, PublicUser{Username: "alice", Role: models.RoleEditor, DisplayName: "alice"}, body.User)

	resp = postJSON(t, app, "/api/auth/logout", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoginRejects(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(testConfig(), db)
	disabled := mustCreate(t, db, "carol", models.RoleReader)
	require.NoError(t, db.Model(disabled).Update("enabled", false).Error)
	mustCreate(t, db, "dave", models.RoleReader)

	tests := []struct {
		name string
		req  LoginRequest
		code int
	}{
		{"missing password", LoginRequest{Username: "dave"}, fiber.StatusBadRequest},
		{"wrong password", LoginRequest{Username: "dave", Password: "nope-nope"}, fiber.StatusUnauthorized},
		{"unknown user", LoginRequest{Username: "erin", Password: "s3cret-pass"}, fiber.StatusUnauthorized},
		{"disabled user", LoginRequest{Username: "carol", Password: "s3cret-pass"}, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/auth/login", tt.req)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestJWTMiddleware(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	app := newTestApp(cfg, db)
	user := mustCreate(t, db, "frank", models.RoleEditor)
	token := login(t, app, "frank", "s3cret-pass")

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/auth/me", "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/auth/me", "garbage").StatusCode)

	foreign, err := GenerateToken("another-secret-another-secret-xx", user, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/auth/me", foreign).StatusCode)

	expired, err := GenerateToken(testSecret, user, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/auth/me", expired).StatusCode)

	// A password change invalidates older tokens.
	require.NoError(t, db.Model(user).Update("password_changed_at", user.PasswordChangedAt.Add(time.Hour)).Error)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/auth/me", token).StatusCode)
}

func TestRolePermissions(t *testing.T) {
	db := newTestDB(t)
	mustCreate(t, db, "admin", models.RoleAdmin)
	mustCreate(t, db, "reader", models.RoleReader)

	open := newTestApp(testConfig(), db)
	adminToken := login(t, open, "admin", "s3cret-pass")
	readerToken := login(t, open, "reader", "s3cret-pass")

	assert.Equal(t, fiber.StatusOK, get(t, open, "/api/export/ping", adminToken).StatusCode)
	assert.Equal(t, fiber.StatusOK, get(t, open, "/api/export/ping", readerToken).StatusCode)
	assert.Equal(t, fiber.StatusOK, get(t, open, "/api/admin/users", adminToken).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, get(t, open, "/api/admin/users", readerToken).StatusCode)

	cfg := testConfig()
	cfg.AllowExportsForReader = false
	closed := newTestApp(cfg, db)
	assert.Equal(t, fiber.StatusForbidden, get(t, closed, "/api/export/ping", readerToken).StatusCode)
	assert.Equal(t, fiber.StatusOK, get(t, closed, "/api/export/ping", adminToken).StatusCode)
}

func TestLoginRateLimit(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.LoginRateLimit = 2
	app := newTestApp(cfg, db)

	bad := LoginRequest{Username: "mallory", Password: "guess-guess"}
	assert.Equal(t, fiber.StatusUnauthorized, postJSON(t, app, "/api/auth/login", bad).StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, postJSON(t, app, "/api/auth/login", bad).StatusCode)
	assert.Equal(t, fiber.StatusTooManyRequests, postJSON(t, app, "/api/auth/login", bad).StatusCode)

	other := LoginRequest{Username: "trent", Password: "guess-guess"}
	assert.Equal(t, fiber.StatusUnauthorized, postJSON(t, app, "/api/auth/login", other).StatusCode)
}

func TestAdminCreatesUser(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(testConfig(), db)
	mustCreate(t, db, "admin", models.RoleAdmin)
	token := login(t, app, "admin", "s3cret-pass")

	create := func(body CreateUserRequest) int {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(fiber.MethodPost, "/api/admin/users", bytes.NewReader(raw))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusCreated, create(CreateUserRequest{Username: "grace", Password: "s3cret-pass", Role: models.RoleReader}))
	assert.Equal(t, fiber.StatusConflict, create(CreateUserRequest{Username: "grace", Password: "s3cret-pass", Role: models.RoleReader}))
	assert.Equal(t, fiber.StatusBadRequest, create(CreateUserRequest{Username: "heidi", Password: "s3cret-pass", Role: "owner"}))

	login(t, app, "grace", "s3cret-pass")

	resp := get(t, app, "/api/admin/users", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var users []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0]["username"])
	assert.Equal(t, "grace", users[1]["username"])

	logs, err := audit.NewRecorder(db).List(context.Background(), audit.ListFilter{Action: models.AuditActionUserCreate})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin", logs[0].UserName)
	assert.Contains(t, logs[0].Description, "grace")
}
