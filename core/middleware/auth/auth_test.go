package auth_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"marketplace/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/whoami", func(c *fiber.Ctx) error {
		a := auth.ActorFrom(c)
		return c.JSON(fiber.Map{"user": a.UserID, "admin": a.Admin})
	})
	app.Post("/write", auth.RequireUser(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Post("/admin", auth.RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return app
}

func TestNew_ApiKey(t *testing.T) {
	app := setupApp(auth.Config{ApiKey: "secret", Skip: []string{"/metrics"}})

	tests := []struct {
		name   string
		path   string
		key    string
		status int
	}{
		{"Missing key", "/whoami", "", fiber.StatusUnauthorized},
		{"Wrong key", "/whoami", "nope", fiber.StatusUnauthorized},
		{"Valid key", "/whoami", "secret", fiber.StatusOK},
		{"Skipped path", "/metrics", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.key != "" {
				req.Header.Set(auth.HeaderApiKey, tt.key)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestNew_Actor(t *testing.T) {
	app := setupApp(auth.Config{})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(auth.HeaderUserID, "u-1")
	req.Header.Set(auth.HeaderUserAdmin, "true")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-1", body["user"])
	assert.Equal(t, true, body["admin"])
}

func TestRequireUser(t *testing.T) {
	app := setupApp(auth.Config{})

	resp, err := app.Test(httptest.NewRequest("POST", "/write", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("POST", "/write", nil)
	req.Header.Set(auth.HeaderUserID, "u-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	app := setupApp(auth.Config{})

	resp, err := app.Test(httptest.NewRequest("POST", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set(auth.HeaderUserID, "u-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set(auth.HeaderUserID, "u-1")
	req.Header.Set(auth.HeaderUserAdmin, "true")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
