package auth

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
)

func newTestApp(f fixture) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h := NewHandler(f.svc)

	app.Post("/api/signup", h.Signup)
	app.Post("/api/login", h.Login)
	app.Post("/api/sso/:provider", h.SSOLogin)

	api := app.Group("/api", RequireAuth(f.svc))
	api.Post("/logout", h.Logout)
	api.Get("/me", h.Me)
	api.Get("/admin/ping", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func loginToken(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	code, body := doJSON(t, app, "POST", "/api/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, fiber.StatusOK, code, body)
	return body["token"].(string)
}

func TestLoginHandler(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)

	code, body := doJSON(t, app, "POST", "/api/login", "", `{"email":"admin@acelegalpartnerssl.com","password":"Cloud@Acelegalpartners_2025"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "admin", body["landing_view"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "a1", user["id"])
	assert.NotContains(t, user, "password_hash")

	code, body = doJSON(t, app, "POST", "/api/login", "", `{"email":"admin@acelegalpartnerssl.com","password":"nope"}`)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password. Please try again.", body["message"])
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	code, body = doJSON(t, app, "POST", "/api/login", "", `{"email":"sam@acelegal.test","password":"lawyer-pass"}`)
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Contains(t, body["message"], "pending approval")

	code, body = doJSON(t, app, "POST", "/api/login", "", `{"email":"not-an-email"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", body["message"])
}

func TestSignupHandler(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)

	payload := `{"role":"Client","name":"New Client","email":"client@new.test","password":"secret1"}`
	code, body := doJSON(t, app, "POST", "/api/signup", "", payload)
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, "login", body["view"])
	assert.Equal(t, "Invited", body["user"].(map[string]any)["status"])

	code, _ = doJSON(t, app, "POST", "/api/signup", "", strings.Replace(payload, "client@new.test", "CLIENT@new.test", 1))
	assert.Equal(t, fiber.StatusConflict, code)

	code, body = doJSON(t, app, "POST", "/api/signup", "", `{"role":"Judge","name":"X","email":"x@y.test","password":"1"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "role")
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "password")
}

func TestSSOHandler(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)

	code, body := doJSON(t, app, "POST", "/api/sso/google", "", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "admin", body["landing_view"])

	code, body = doJSON(t, app, "POST", "/api/sso/okta", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "SSO login failed. Please contact an administrator.", body["message"])
}

func TestMeLogoutAndRoles(t *testing.T) {
	f := newFixture(t)
	app := newTestApp(f)

	code, _ := doJSON(t, app, "GET", "/api/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	lawyer := loginToken(t, app, "jane@acelegal.test", "lawyer-pass")
	code, body := doJSON(t, app, "GET", "/api/me", lawyer, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "L1", body["id"])

	code, _ = doJSON(t, app, "GET", "/api/admin/ping", lawyer, "")
	assert.Equal(t, fiber.StatusForbidden, code)

	admin := loginToken(t, app, adminEmail, adminPassword)
	req := httptest.NewRequest("GET", "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	code, body = doJSON(t, app, "POST", "/api/logout", lawyer, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "login", body["view"])

	code, _ = doJSON(t, app, "GET", "/api/me", lawyer, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
}
