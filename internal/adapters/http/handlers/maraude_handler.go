package handlers

import (
	"errors"
	"strconv"
	"time"

	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/services"
	"solidarite-maraude/internal/pkg/pagination"
	"solidarite-maraude/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MaraudeHandler handles maraude action endpoints
type MaraudeHandler struct {
	maraudeService *services.MaraudeService
}

// NewMaraudeHandler creates a new maraude handler
func NewMaraudeHandler(maraudeService *services.MaraudeService) *MaraudeHandler {
	return &MaraudeHandler{maraudeService: maraudeService}
}

// Create handles maraude action creation
// @Summary Create maraude action
// @Description Create a recurring or one-time maraude action
// @Tags Maraudes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMaraudeInput true "Action data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /maraudes [post]
func (h *MaraudeHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateMaraudeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Title == "" {
		return response.BadRequest(c, "Title is required")
	}

	action, err := h.maraudeService.Create(c.Context(), &input, actor)
	if err != nil {
		return translateCommonError(c, err, "Failed to create maraude action")
	}

	return response.Created(c, "Maraude action created", h.maraudeService.BuildResponse(action, time.Now()))
}

// Get handles fetching one maraude action
// @Summary Get maraude action
// @Tags Maraudes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Action ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maraudes/{id} [get]
func (h *MaraudeHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid action ID")
	}

	action, err := h.maraudeService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMaraudeNotFound) {
			return response.NotFound(c, "Maraude action not found")
		}
		return translateCommonError(c, err, "Failed to get maraude action")
	}

	return response.Success(c, "Maraude action retrieved", h.maraudeService.BuildResponse(action, time.Now()))
}

// List handles listing maraude actions
// @Summary List maraude actions
// @Tags Maraudes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Param association_id query int false "Filter by association"
// @Success 200 {object} response.Response
// @Router /maraudes [get]
func (h *MaraudeHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	// Non-admins only see their own association's actions
	var associationID *uint
	if authz.IsAdmin(actor) {
		if raw := c.Query("association_id"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return response.BadRequest(c, "Invalid association_id")
			}
			id := uint(parsed)
			associationID = &id
		}
	} else {
		associationID = &actor.AssociationID
	}

	actions, total, err := h.maraudeService.List(c.Context(), associationID, params.Offset, params.Limit)
	if err != nil {
		return translateCommonError(c, err, "Failed to list maraude actions")
	}

	now := time.Now()
	items := make([]interface{}, 0, len(actions))
	for _, action := range actions {
		items = append(items, h.maraudeService.BuildResponse(action, now))
	}

	return response.Success(c, "Maraude actions retrieved", pagination.NewResponse(items, params, total))
}

// Update handles maraude action updates
// @Summary Update maraude action
// @Tags Maraudes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Action ID"
// @Param body body services.UpdateMaraudeInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maraudes/{id} [put]
func (h *MaraudeHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid action ID")
	}

	var input services.UpdateMaraudeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	action, err := h.maraudeService.Update(c.Context(), id, &input, actor)
	if err != nil {
		if errors.Is(err, services.ErrMaraudeNotFound) {
			return response.NotFound(c, "Maraude action not found")
		}
		return translateCommonError(c, err, "Failed to update maraude action")
	}

	return response.Success(c, "Maraude action updated", h.maraudeService.BuildResponse(action, time.Now()))
}

// StatusRequest represents status change request body
type StatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles action status transitions
// @Summary Update maraude action status
// @Tags Maraudes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Action ID"
// @Param body body StatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /maraudes/{id}/status [patch]
func (h *MaraudeHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid action ID")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	action, err := h.maraudeService.UpdateStatus(c.Context(), id, req.Status, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidActionStatus):
			return response.BadRequest(c, "Invalid action status")
		case errors.Is(err, services.ErrMaraudeNotFound):
			return response.NotFound(c, "Maraude action not found")
		default:
			return translateCommonError(c, err, "Failed to update action status")
		}
	}

	return response.Success(c, "Action status updated", h.maraudeService.BuildResponse(action, time.Now()))
}

// Delete handles maraude action deletion
// @Summary Delete maraude action
// @Tags Maraudes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Action ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /maraudes/{id} [delete]
func (h *MaraudeHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid action ID")
	}

	if err := h.maraudeService.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, services.ErrMaraudeNotFound) {
			return response.NotFound(c, "Maraude action not found")
		}
		return translateCommonError(c, err, "Failed to delete maraude action")
	}

	return response.Success(c, "Maraude action deleted", nil)
}

// TodayActive handles the public today's-maraudes listing
// @Summary Today's active maraudes
// @Description List maraudes happening today (public)
// @Tags Maraudes
// @Produce json
// @Success 200 {object} response.Response
// @Router /maraudes/today/active [get]
func (h *MaraudeHandler) TodayActive(c *fiber.Ctx) error {
	actions, err := h.maraudeService.TodayActive(c.Context(), time.Now())
	if err != nil {
		return translateCommonError(c, err, "Failed to list today's maraudes")
	}

	return response.Success(c, "Today's maraudes retrieved", fiber.Map{
		"date":     time.Now().Format("2006-01-02"),
		"maraudes": actions,
	})
}

// WeeklySchedule handles the public weekly schedule listing
// @Summary Weekly maraude schedule
// @Description Recurring maraudes grouped by weekday (public)
// @Tags Maraudes
// @Produce json
// @Success 200 {object} response.Response
// @Router /maraudes/weekly-schedule [get]
func (h *MaraudeHandler) WeeklySchedule(c *fiber.Ctx) error {
	week, err := h.maraudeService.WeeklySchedule(c.Context(), time.Now())
	if err != nil {
		return translateCommonError(c, err, "Failed to build weekly schedule")
	}

	return response.Success(c, "Weekly schedule retrieved", week)
}
