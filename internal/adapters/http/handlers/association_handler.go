package handlers

import (
	"errors"

	"solidarite-maraude/internal/core/services"
	"solidarite-maraude/internal/pkg/pagination"
	"solidarite-maraude/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AssociationHandler handles association endpoints
type AssociationHandler struct {
	associationService *services.AssociationService
}

// NewAssociationHandler creates a new association handler
func NewAssociationHandler(associationService *services.AssociationService) *AssociationHandler {
	return &AssociationHandler{associationService: associationService}
}

// List handles listing associations (admin)
// @Summary List associations
// @Tags Associations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /associations [get]
func (h *AssociationHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	associations, total, err := h.associationService.List(c.Context(), actor, params.Offset, params.Limit)
	if err != nil {
		return translateCommonError(c, err, "Failed to list associations")
	}

	return response.Success(c, "Associations retrieved", pagination.NewResponse(associations, params, total))
}

// Get handles fetching one association
// @Summary Get association
// @Tags Associations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Association ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /associations/{id} [get]
func (h *AssociationHandler) Get(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid association ID")
	}

	association, err := h.associationService.GetByID(c.Context(), id, actor)
	if err != nil {
		if errors.Is(err, services.ErrAssociationNotFound) {
			return response.NotFound(c, "Association not found")
		}
		return translateCommonError(c, err, "Failed to get association")
	}

	return response.Success(c, "Association retrieved", association)
}

// Update handles association profile updates
// @Summary Update association
// @Tags Associations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Association ID"
// @Param body body services.UpdateAssociationInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /associations/{id} [put]
func (h *AssociationHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid association ID")
	}

	var input services.UpdateAssociationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	association, err := h.associationService.Update(c.Context(), id, &input, actor)
	if err != nil {
		if errors.Is(err, services.ErrAssociationNotFound) {
			return response.NotFound(c, "Association not found")
		}
		return translateCommonError(c, err, "Failed to update association")
	}

	return response.Success(c, "Association updated", association)
}

// ActivateRequest represents activation request body
type ActivateRequest struct {
	IsActive *bool `json:"is_active"`
}

// Activate handles admin association activation
// @Summary Activate association
// @Description Activate or deactivate an association (admin)
// @Tags Associations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Association ID"
// @Param body body ActivateRequest false "Activation flag, defaults to true"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /associations/{id}/activate [patch]
func (h *AssociationHandler) Activate(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid association ID")
	}

	active := true
	var req ActivateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
		if req.IsActive != nil {
			active = *req.IsActive
		}
	}

	association, err := h.associationService.SetActive(c.Context(), id, active, actor)
	if err != nil {
		if errors.Is(err, services.ErrAssociationNotFound) {
			return response.NotFound(c, "Association not found")
		}
		return translateCommonError(c, err, "Failed to update association activation")
	}

	return response.Success(c, "Association activation updated", association)
}

// Delete handles association deletion (admin)
// @Summary Delete association
// @Tags Associations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Association ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /associations/{id} [delete]
func (h *AssociationHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid association ID")
	}

	if err := h.associationService.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, services.ErrAssociationNotFound) {
			return response.NotFound(c, "Association not found")
		}
		return translateCommonError(c, err, "Failed to delete association")
	}

	return response.Success(c, "Association deleted", nil)
}
