package handlers

import (
	"errors"
	"strconv"
	"time"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/services"
	"solidarite-maraude/internal/pkg/pagination"
	"solidarite-maraude/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles maraude report endpoints
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Create handles report creation
// @Summary Create maraude report
// @Description Create a report with distributions and alerts in one shot
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateReportInput true "Report data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reports [post]
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateReportInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.MaraudeActionID == 0 {
		return response.BadRequest(c, "Maraude action is required")
	}
	if input.ReportDate == "" {
		return response.BadRequest(c, "Report date is required")
	}

	report, err := h.reportService.Create(c.Context(), &input, actor)
	if err != nil {
		var duplicate *services.DuplicateReportError
		switch {
		case errors.As(err, &duplicate):
			return response.ConflictWithDetails(c, "A report already exists for this maraude and date", duplicate)
		case errors.Is(err, services.ErrMaraudeNotFound):
			return response.NotFound(c, "Maraude action not found")
		default:
			return translateCommonError(c, err, "Failed to create report")
		}
	}

	return response.Created(c, "Report created", report.ToResponse())
}

// Get handles fetching one report
// @Summary Get maraude report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid report ID")
	}

	report, err := h.reportService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return response.NotFound(c, "Report not found")
		}
		return translateCommonError(c, err, "Failed to get report")
	}

	return response.Success(c, "Report retrieved", report.ToResponse())
}

// List handles listing reports
// @Summary List maraude reports
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Param maraude_action_id query int false "Filter by action"
// @Param from query string false "Start date YYYY-MM-DD"
// @Param to query string false "End date YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /reports [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	filter := &repositories.ReportFilter{
		Status: c.Query("status"),
	}
	if raw := c.Query("maraude_action_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid maraude_action_id")
		}
		id := uint(parsed)
		filter.ActionID = &id
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return response.BadRequest(c, "Invalid from date, use YYYY-MM-DD")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return response.BadRequest(c, "Invalid to date, use YYYY-MM-DD")
		}
		filter.To = &to
	}

	reports, total, err := h.reportService.List(c.Context(), filter, actor, params.Offset, params.Limit)
	if err != nil {
		return translateCommonError(c, err, "Failed to list reports")
	}

	items := make([]*models.MaraudeReportResponse, 0, len(reports))
	for _, report := range reports {
		items = append(items, report.ToResponse())
	}

	return response.Success(c, "Reports retrieved", pagination.NewResponse(items, params, total))
}

// Update handles report updates
// @Summary Update maraude report
// @Description Patch scalar fields; distributions and alerts replace wholesale when present
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param body body services.UpdateReportInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /reports/{id} [put]
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid report ID")
	}

	var input services.UpdateReportInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	report, err := h.reportService.Update(c.Context(), id, &input, actor)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return response.NotFound(c, "Report not found")
		}
		return translateCommonError(c, err, "Failed to update report")
	}

	return response.Success(c, "Report updated", report.ToResponse())
}

// Submit handles the draft -> submitted transition
// @Summary Submit maraude report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reports/{id}/submit [patch]
func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid report ID")
	}

	report, err := h.reportService.Submit(c.Context(), id, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return response.NotFound(c, "Report not found")
		case errors.Is(err, services.ErrReportNotDraft):
			return response.BadRequest(c, "Only draft reports can be submitted")
		default:
			return translateCommonError(c, err, "Failed to submit report")
		}
	}

	return response.Success(c, "Report submitted", report.ToResponse())
}

// Validate handles the submitted -> validated transition
// @Summary Validate maraude report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /reports/{id}/validate [patch]
func (h *ReportHandler) Validate(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid report ID")
	}

	report, err := h.reportService.Validate(c.Context(), id, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return response.NotFound(c, "Report not found")
		case errors.Is(err, services.ErrReportNotSubmitted):
			return response.BadRequest(c, "Only submitted reports can be validated")
		default:
			return translateCommonError(c, err, "Failed to validate report")
		}
	}

	return response.Success(c, "Report validated", report.ToResponse())
}

// Delete handles report deletion
// @Summary Delete maraude report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid report ID")
	}

	if err := h.reportService.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return response.NotFound(c, "Report not found")
		}
		return translateCommonError(c, err, "Failed to delete report")
	}

	return response.Success(c, "Report deleted", nil)
}

// SendEmail handles mailing a report to coordinators or custom recipients
// @Summary Send report by email
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param body body services.SendEmailInput false "Recipients and custom message"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /reports/{id}/send-email [post]
func (h *ReportHandler) SendEmail(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid report ID")
	}

	var input services.SendEmailInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	report, err := h.reportService.SendEmail(c.Context(), id, &input, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return response.NotFound(c, "Report not found")
		case errors.Is(err, services.ErrEmailNotSent):
			return response.Error(c, fiber.StatusBadGateway, "Report email could not be sent")
		default:
			return translateCommonError(c, err, "Failed to send report email")
		}
	}

	return response.Success(c, "Report email sent", report.ToResponse())
}

// Statistics handles report aggregation for an association and period
// @Summary Report statistics
// @Description Aggregate beneficiaries, distributions and alerts over a period
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param association_id query int true "Association ID"
// @Param from query string true "Start date YYYY-MM-DD"
// @Param to query string true "End date YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /reports/statistics [get]
func (h *ReportHandler) Statistics(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	associationID := actor.AssociationID
	if raw := c.Query("association_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid association_id")
		}
		associationID = uint(parsed)
	}

	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return response.BadRequest(c, "Invalid from date, use YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return response.BadRequest(c, "Invalid to date, use YYYY-MM-DD")
		}
		// include the whole end day
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}

	stats, err := h.reportService.GetStatistics(c.Context(), associationID, from, to, actor)
	if err != nil {
		return translateCommonError(c, err, "Failed to compute statistics")
	}

	return response.Success(c, "Statistics computed", stats)
}
