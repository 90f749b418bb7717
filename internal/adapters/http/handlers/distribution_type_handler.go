package handlers

import (
	"errors"

	"solidarite-maraude/internal/core/services"
	"solidarite-maraude/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DistributionTypeHandler handles distribution type reference data endpoints
type DistributionTypeHandler struct {
	distTypeService *services.DistributionTypeService
}

// NewDistributionTypeHandler creates a new distribution type handler
func NewDistributionTypeHandler(distTypeService *services.DistributionTypeService) *DistributionTypeHandler {
	return &DistributionTypeHandler{distTypeService: distTypeService}
}

// List handles listing distribution types
// @Summary List distribution types
// @Description List distribution reference data (public)
// @Tags DistributionTypes
// @Produce json
// @Param all query bool false "Include inactive types"
// @Success 200 {object} response.Response
// @Router /distribution-types [get]
func (h *DistributionTypeHandler) List(c *fiber.Ctx) error {
	activeOnly := !c.QueryBool("all", false)

	types, err := h.distTypeService.List(c.Context(), activeOnly)
	if err != nil {
		return translateCommonError(c, err, "Failed to list distribution types")
	}

	return response.Success(c, "Distribution types retrieved", types)
}

// Create handles distribution type creation (admin)
// @Summary Create distribution type
// @Tags DistributionTypes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.DistributionTypeInput true "Distribution type data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /distribution-types [post]
func (h *DistributionTypeHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.DistributionTypeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	dt, err := h.distTypeService.Create(c.Context(), &input, actor)
	if err != nil {
		if errors.Is(err, services.ErrDistributionTypeExists) {
			return response.Conflict(c, "Distribution type name already exists")
		}
		return translateCommonError(c, err, "Failed to create distribution type")
	}

	return response.Created(c, "Distribution type created", dt)
}

// Update handles distribution type updates (admin)
// @Summary Update distribution type
// @Tags DistributionTypes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Distribution type ID"
// @Param body body services.DistributionTypeInput true "Fields to update"
// @Success 200 {object} response.Response
// @Router /distribution-types/{id} [put]
func (h *DistributionTypeHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid distribution type ID")
	}

	var input services.DistributionTypeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	dt, err := h.distTypeService.Update(c.Context(), id, &input, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDistributionTypeNotFound):
			return response.NotFound(c, "Distribution type not found")
		case errors.Is(err, services.ErrDistributionTypeExists):
			return response.Conflict(c, "Distribution type name already exists")
		default:
			return translateCommonError(c, err, "Failed to update distribution type")
		}
	}

	return response.Success(c, "Distribution type updated", dt)
}

// Delete handles distribution type deletion (admin)
// @Summary Delete distribution type
// @Tags DistributionTypes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Distribution type ID"
// @Success 200 {object} response.Response
// @Router /distribution-types/{id} [delete]
func (h *DistributionTypeHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid distribution type ID")
	}

	if err := h.distTypeService.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, services.ErrDistributionTypeNotFound) {
			return response.NotFound(c, "Distribution type not found")
		}
		return translateCommonError(c, err, "Failed to delete distribution type")
	}

	return response.Success(c, "Distribution type deleted", nil)
}
