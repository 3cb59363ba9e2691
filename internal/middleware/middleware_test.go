package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dmitriy839/foodgram-project-react/domain"
	"github.com/Dmitriy839/foodgram-project-react/pkg/jwt"
)

func localsEcho(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)
	return c.JSON(fiber.Map{"user_id": userID})
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewJWTService()
	m := NewMiddleware()

	app := fiber.New()
	app.Get("/protected", m.AuthMiddleware(jwtService), localsEcho)

	res, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+jwtService.GenerateTokenUser(42, domain.RoleUser))
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewJWTService()
	m := NewMiddleware()

	app := fiber.New()
	app.Get("/open", m.OptionalAuthMiddleware(jwtService), localsEcho)

	// Anonymous and garbage-token requests both pass through.
	res, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	req := httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	req = httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer "+jwtService.GenerateTokenUser(42, domain.RoleUser))
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
