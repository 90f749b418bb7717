package handlers

import (
	"errors"

	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/services"
	"solidarite-maraude/internal/pkg/pagination"
	"solidarite-maraude/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MerchantHandler handles partner merchant endpoints
type MerchantHandler struct {
	merchantService *services.MerchantService
}

// NewMerchantHandler creates a new merchant handler
func NewMerchantHandler(merchantService *services.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantService: merchantService}
}

// Create handles merchant creation
// @Summary Create merchant
// @Description Contribute a partner merchant, unverified until admin review
// @Tags Merchants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMerchantInput true "Merchant data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /merchants [post]
func (h *MerchantHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateMerchantInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	merchant, err := h.merchantService.Create(c.Context(), &input, actor)
	if err != nil {
		return translateCommonError(c, err, "Failed to create merchant")
	}

	return response.Created(c, "Merchant created, pending verification", merchant)
}

// Get handles fetching one merchant
// @Summary Get merchant
// @Tags Merchants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Merchant ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /merchants/{id} [get]
func (h *MerchantHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid merchant ID")
	}

	merchant, err := h.merchantService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			return response.NotFound(c, "Merchant not found")
		}
		return translateCommonError(c, err, "Failed to get merchant")
	}

	return response.Success(c, "Merchant retrieved", merchant)
}

// List handles listing merchants
// @Summary List merchants
// @Tags Merchants
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Param category query string false "Filter by category"
// @Param verified query bool false "Verified merchants only"
// @Success 200 {object} response.Response
// @Router /merchants [get]
func (h *MerchantHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := &repositories.MerchantFilter{
		Category:     c.Query("category"),
		VerifiedOnly: c.QueryBool("verified", false),
		ActiveOnly:   true,
	}

	merchants, total, err := h.merchantService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return translateCommonError(c, err, "Failed to list merchants")
	}

	return response.Success(c, "Merchants retrieved", pagination.NewResponse(merchants, params, total))
}

// Update handles merchant updates
// @Summary Update merchant
// @Tags Merchants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Merchant ID"
// @Param body body services.UpdateMerchantInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /merchants/{id} [put]
func (h *MerchantHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid merchant ID")
	}

	var input services.UpdateMerchantInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	merchant, err := h.merchantService.Update(c.Context(), id, &input, actor)
	if err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			return response.NotFound(c, "Merchant not found")
		}
		return translateCommonError(c, err, "Failed to update merchant")
	}

	return response.Success(c, "Merchant updated", merchant)
}

// VerifyRequest represents merchant verification request body
type VerifyRequest struct {
	IsVerified *bool `json:"is_verified"`
}

// Verify handles admin merchant verification
// @Summary Verify merchant
// @Tags Merchants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Merchant ID"
// @Param body body VerifyRequest false "Verification flag, defaults to true"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /merchants/{id}/verify [patch]
func (h *MerchantHandler) Verify(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid merchant ID")
	}

	verified := true
	var req VerifyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
		if req.IsVerified != nil {
			verified = *req.IsVerified
		}
	}

	merchant, err := h.merchantService.Verify(c.Context(), id, verified, actor)
	if err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			return response.NotFound(c, "Merchant not found")
		}
		return translateCommonError(c, err, "Failed to verify merchant")
	}

	return response.Success(c, "Merchant verification updated", merchant)
}

// Delete handles merchant deletion
// @Summary Delete merchant
// @Tags Merchants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Merchant ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /merchants/{id} [delete]
func (h *MerchantHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid merchant ID")
	}

	if err := h.merchantService.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			return response.NotFound(c, "Merchant not found")
		}
		return translateCommonError(c, err, "Failed to delete merchant")
	}

	return response.Success(c, "Merchant deleted", nil)
}
