// Package middleware holds the fiber middleware shared by the HTTP handlers.
package middleware

import (
	"errors"
	"strings"

	"github.com/amirasaad/payminute/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleViewer   = "viewer"
	RoleStreamer = "streamer"
	RoleAdmin    = "admin"

	principalKey = "principal"
)

// Principal is the authenticated caller extracted from the bearer token.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the caller may use the back-office routes.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// JwtProtected validates the bearer token and stores the caller's Principal.
// Tokens are issued by the identity service; this module only verifies them.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return jwtError(c, errors.New("invalid token"))
			}
			p, err := principalFrom(token, cfg)
			if err != nil {
				return jwtError(c, err)
			}
			c.Locals(principalKey, p)
			return c.Next()
		},
	})
}

func principalFrom(token *jwt.Token, cfg *config.Jwt) (Principal, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims")
	}
	raw, _ := claims[cfg.UserIDClaim].(string)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return Principal{}, errors.New("invalid user id claim")
	}
	role, _ := claims[cfg.RoleClaim].(string)
	if role == "" {
		role = RoleViewer
	}
	return Principal{UserID: id, Role: strings.ToLower(role)}, nil
}

// CurrentUser returns the Principal set by JwtProtected.
func CurrentUser(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	return p, ok
}

// RequireRole rejects callers whose role is not one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := CurrentUser(c)
		if !ok {
			return jwtError(c, errors.New("missing principal"))
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  fiber.StatusForbidden,
			"message": "Forbidden",
		})
	}
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) || strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  fiber.StatusBadRequest,
			"message": "Missing or malformed JWT",
		})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  fiber.StatusUnauthorized,
		"message": "Invalid or expired JWT",
	})
}
