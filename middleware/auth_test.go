package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextMiddlewareSecuredPathRequiresUser(t *testing.T) {
	app := fiber.New()
	app.Use(UserContextMiddleware())
	app.Get("/s/admin/points", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/s/admin/points", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/s/admin/points", nil)
	req.Header.Set("X-User-ID", "user-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUserContextMiddlewareAttachesLocals(t *testing.T) {
	app := fiber.New()
	app.Use(UserContextMiddleware())

	var gotUser string
	var gotRoles []string
	app.Get("/user/progress", func(c *fiber.Ctx) error {
		gotUser = c.Locals("user_id").(string)
		gotRoles = c.Locals("user_roles").([]string)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/user/progress", nil)
	req.Header.Set("X-User-ID", "user-42")
	req.Header.Set("X-User-Roles", "admin, coach")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-42", gotUser)
	assert.Equal(t, []string{"admin", "coach"}, gotRoles)
}

func TestGatewayAuthMiddleware(t *testing.T) {
	t.Setenv("DIET_SERVICE_TOKEN", "sekret")

	app := fiber.New()
	app.Use(GatewayAuthMiddleware())
	app.Get("/meals", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Missing header
	resp, err := app.Test(httptest.NewRequest("GET", "/meals", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Wrong token
	req := httptest.NewRequest("GET", "/meals", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Bearer token
	req = httptest.NewRequest("GET", "/meals", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Raw token (gateway without Bearer prefix)
	req = httptest.NewRequest("GET", "/meals", nil)
	req.Header.Set("Authorization", "sekret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
