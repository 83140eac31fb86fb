package middleware

import (
	"errors"
	"strings"

	"sacco-hub/internal/config"
	"sacco-hub/internal/core/domain"
	"sacco-hub/internal/pkg/jwt"
	"sacco-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// AuthMiddleware validates the access token and resolves the caller into a
// domain.Actor. The actor is placed in Locals once; handlers and services
// read capabilities from it instead of re-checking role strings.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(actorKey, domain.Actor{
			UserID:      claims.UserID,
			PhoneNumber: claims.PhoneNumber,
			FullName:    claims.FullName,
			Role:        domain.Role(claims.Role),
		})

		return c.Next()
	}
}

// AdminOnly allows only actors with the ADMIN capability
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals(actorKey).(domain.Actor)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !actor.IsAdmin() {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// GetActor returns the authenticated actor for the request. The second
// return is false when the route was not behind AuthMiddleware.
func GetActor(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	return actor, ok
}

// extractToken reads the access token from cookie or Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
