package handlers

import (
	"errors"
	"strconv"

	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"
	"solidarite-maraude/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// actorFromLocals rebuilds the authenticated actor from the values the
// auth middleware stored on the request
func actorFromLocals(c *fiber.Ctx) (authz.Actor, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return authz.Actor{}, false
	}
	associationID, _ := c.Locals("associationID").(uint)
	role, _ := c.Locals("role").(string)
	return authz.Actor{
		ID:            userID,
		AssociationID: associationID,
		Role:          role,
	}, true
}

// parseIDParam parses the :id route parameter
func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// translateCommonError maps the shared domain errors to responses;
// service-specific sentinels are matched by each handler before
// falling through here.
func translateCommonError(c *fiber.Ctx, err error, fallback string) error {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return response.ValidationFailed(c, validation.Fields)
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "Access denied")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	default:
		return response.InternalServerError(c, fallback)
	}
}
