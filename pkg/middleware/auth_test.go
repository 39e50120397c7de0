package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwt = &config.Jwt{Secret: "test-secret", UserIDClaim: "user_id", RoleClaim: "role"}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJwt.Secret))
	require.NoError(t, err)
	return s
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(JwtProtected(testJwt))
	app.Get("/", func(c *fiber.Ctx) error {
		p, ok := CurrentUser(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(p.UserID.String() + ":" + p.Role)
	})
	app.Get("/admin", RequireRole(RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJwtProtected_MissingToken(t *testing.T) {
	resp := get(t, newApp(), "/", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestJwtProtected_SetsPrincipal(t *testing.T) {
	id := uuid.New()
	token := sign(t, jwt.MapClaims{"user_id": id.String(), "role": "Streamer", "exp": time.Now().Add(time.Hour).Unix()})
	resp := get(t, newApp(), "/", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJwtProtected_RejectsBadClaims(t *testing.T) {
	expired := sign(t, jwt.MapClaims{"user_id": uuid.NewString(), "exp": time.Now().Add(-time.Hour).Unix()})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, newApp(), "/", expired).StatusCode)

	noUser := sign(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, newApp(), "/", noUser).StatusCode)
}

func TestRequireRole(t *testing.T) {
	viewer := sign(t, jwt.MapClaims{"user_id": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, fiber.StatusForbidden, get(t, newApp(), "/admin", viewer).StatusCode)

	admin := sign(t, jwt.MapClaims{"user_id": uuid.NewString(), "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, fiber.StatusOK, get(t, newApp(), "/admin", admin).StatusCode)
}

func TestJwtError_Invalid(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return jwtError(c, errors.New("any other error"))
	})
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected %d, got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}
