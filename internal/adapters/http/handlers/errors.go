package handlers

import (
	"errors"

	"sacco-hub/internal/core/domain"
	"sacco-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// handleServiceError maps core error types onto HTTP responses. Anything
// outside the domain taxonomy is a 500 and gets logged with the request path.
func handleServiceError(c *fiber.Ctx, err error) error {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		notFoundErr   *domain.NotFoundError
		externalErr   *domain.ExternalServiceError
	)

	switch {
	case errors.As(err, &validationErr):
		return response.BadRequest(c, validationErr.Error())
	case errors.As(err, &conflictErr):
		return response.Conflict(c, conflictErr.Error())
	case errors.As(err, &notFoundErr):
		return response.NotFound(c, notFoundErr.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to access this resource")
	case errors.As(err, &externalErr):
		logrus.Errorf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return response.BadGateway(c, "Upstream service unavailable")
	default:
		logrus.Errorf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return response.InternalServerError(c, "Internal server error")
	}
}
