package services

import (
	"context"
	"errors"
	"time"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"
	"solidarite-maraude/internal/core/schedule"

	"gorm.io/gorm"
)

// Maraude service errors
var (
	ErrMaraudeNotFound     = errors.New("maraude action not found")
	ErrInvalidActionStatus = errors.New("invalid action status")
)

var actionStatuses = []string{
	models.ActionStatusPlanned,
	models.ActionStatusInProgress,
	models.ActionStatusCompleted,
	models.ActionStatusCancelled,
}

// MaraudeService handles maraude action business logic
type MaraudeService struct {
	maraudeRepo *repositories.MaraudeRepository
}

// NewMaraudeService creates a new maraude service
func NewMaraudeService(maraudeRepo *repositories.MaraudeRepository) *MaraudeService {
	return &MaraudeService{maraudeRepo: maraudeRepo}
}

// WaypointInput represents one route stop
type WaypointInput struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
	Name    string  `json:"name,omitempty"`
	Order   int     `json:"order"`
}

// CreateMaraudeInput represents create action input
type CreateMaraudeInput struct {
	Title                string          `json:"title"`
	Description          string          `json:"description,omitempty"`
	StartLat             float64         `json:"start_lat"`
	StartLng             float64         `json:"start_lng"`
	StartAddress         string          `json:"start_address,omitempty"`
	Waypoints            []WaypointInput `json:"waypoints,omitempty"`
	RoutePolyline        string          `json:"route_polyline,omitempty"`
	EstimatedDistance    float64         `json:"estimated_distance,omitempty"`
	EstimatedDuration    int             `json:"estimated_duration,omitempty"`
	DayOfWeek            *int            `json:"day_of_week,omitempty"`
	IsRecurring          bool            `json:"is_recurring"`
	ScheduledDate        string          `json:"scheduled_date,omitempty"`
	StartTime            string          `json:"start_time,omitempty"`
	EndTime              string          `json:"end_time,omitempty"`
	MaterialsDistributed models.JSONMap  `json:"materials_distributed,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	AssociationID        uint            `json:"association_id,omitempty"`
}

// validateRecurrence enforces the recurrence exclusivity invariant:
// recurring actions carry dayOfWeek 1..7 and no date, one-time actions
// carry a date and no dayOfWeek.
func validateRecurrence(isRecurring bool, dayOfWeek *int, scheduledDate string) (*time.Time, error) {
	if isRecurring {
		if dayOfWeek == nil || *dayOfWeek < 1 || *dayOfWeek > 7 {
			return nil, domain.NewValidationError("day_of_week", "required for recurring maraudes (1=Monday..7=Sunday)")
		}
		if scheduledDate != "" {
			return nil, domain.NewValidationError("scheduled_date", "must be empty for recurring maraudes")
		}
		return nil, nil
	}

	if scheduledDate == "" {
		return nil, domain.NewValidationError("scheduled_date", "required for one-time maraudes")
	}
	if dayOfWeek != nil {
		return nil, domain.NewValidationError("day_of_week", "must be empty for one-time maraudes")
	}
	parsed, err := time.ParseInLocation("2006-01-02", scheduledDate, time.Local)
	if err != nil {
		return nil, domain.NewValidationError("scheduled_date", "invalid date format, use YYYY-MM-DD")
	}
	return &parsed, nil
}

// Create creates a new maraude action. Non-admin actors create actions
// for their own association regardless of the supplied association id.
func (s *MaraudeService) Create(ctx context.Context, input *CreateMaraudeInput, actor authz.Actor) (*models.MaraudeAction, error) {
	associationID := actor.AssociationID
	if authz.IsAdmin(actor) && input.AssociationID != 0 {
		associationID = input.AssociationID
	}

	scheduledDate, err := validateRecurrence(input.IsRecurring, input.DayOfWeek, input.ScheduledDate)
	if err != nil {
		return nil, err
	}

	action := &models.MaraudeAction{
		Title:                input.Title,
		Description:          input.Description,
		StartLat:             input.StartLat,
		StartLng:             input.StartLng,
		StartAddress:         input.StartAddress,
		RoutePolyline:        input.RoutePolyline,
		EstimatedDistance:    input.EstimatedDistance,
		EstimatedDuration:    input.EstimatedDuration,
		DayOfWeek:            input.DayOfWeek,
		IsRecurring:          input.IsRecurring,
		ScheduledDate:        scheduledDate,
		StartTime:            input.StartTime,
		EndTime:              input.EndTime,
		Status:               models.ActionStatusPlanned,
		MaterialsDistributed: input.MaterialsDistributed,
		Notes:                input.Notes,
		IsActive:             true,
		CreatedBy:            actor.ID,
		AssociationID:        associationID,
		Waypoints:            buildWaypoints(input.Waypoints),
	}

	if err := s.maraudeRepo.Create(ctx, action); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, action.ID)
}

func buildWaypoints(inputs []WaypointInput) []models.Waypoint {
	waypoints := make([]models.Waypoint, 0, len(inputs))
	for _, w := range inputs {
		waypoints = append(waypoints, models.Waypoint{
			Lat:      w.Lat,
			Lng:      w.Lng,
			Address:  w.Address,
			Name:     w.Name,
			Position: w.Order,
		})
	}
	return waypoints
}

// GetByID gets an action by ID
func (s *MaraudeService) GetByID(ctx context.Context, id uint) (*models.MaraudeAction, error) {
	action, err := s.maraudeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaraudeNotFound
		}
		return nil, err
	}
	return action, nil
}

// UpdateMaraudeInput represents update action input. Nil pointers leave
// the stored value untouched; a non-nil Waypoints slice replaces the
// whole set.
type UpdateMaraudeInput struct {
	Title                *string          `json:"title,omitempty"`
	Description          *string          `json:"description,omitempty"`
	StartLat             *float64         `json:"start_lat,omitempty"`
	StartLng             *float64         `json:"start_lng,omitempty"`
	StartAddress         *string          `json:"start_address,omitempty"`
	Waypoints            *[]WaypointInput `json:"waypoints,omitempty"`
	RoutePolyline        *string          `json:"route_polyline,omitempty"`
	EstimatedDistance    *float64         `json:"estimated_distance,omitempty"`
	EstimatedDuration    *int             `json:"estimated_duration,omitempty"`
	DayOfWeek            *int             `json:"day_of_week,omitempty"`
	IsRecurring          *bool            `json:"is_recurring,omitempty"`
	ScheduledDate        *string          `json:"scheduled_date,omitempty"`
	StartTime            *string          `json:"start_time,omitempty"`
	EndTime              *string          `json:"end_time,omitempty"`
	ParticipantsCount    *int             `json:"participants_count,omitempty"`
	BeneficiariesHelped  *int             `json:"beneficiaries_helped,omitempty"`
	MaterialsDistributed *models.JSONMap  `json:"materials_distributed,omitempty"`
	Notes                *string          `json:"notes,omitempty"`
	IsActive             *bool            `json:"is_active,omitempty"`
}

// Update updates an action. Recurrence fields are re-validated as a
// unit whenever any of them changes.
func (s *MaraudeService) Update(ctx context.Context, id uint, input *UpdateMaraudeInput, actor authz.Actor) (*models.MaraudeAction, error) {
	action, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanEdit(actor, action.CreatedBy, action.AssociationID) {
		return nil, domain.ErrForbidden
	}

	if input.Title != nil {
		action.Title = *input.Title
	}
	if input.Description != nil {
		action.Description = *input.Description
	}
	if input.StartLat != nil {
		action.StartLat = *input.StartLat
	}
	if input.StartLng != nil {
		action.StartLng = *input.StartLng
	}
	if input.StartAddress != nil {
		action.StartAddress = *input.StartAddress
	}
	if input.RoutePolyline != nil {
		action.RoutePolyline = *input.RoutePolyline
	}
	if input.EstimatedDistance != nil {
		action.EstimatedDistance = *input.EstimatedDistance
	}
	if input.EstimatedDuration != nil {
		action.EstimatedDuration = *input.EstimatedDuration
	}
	if input.StartTime != nil {
		action.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		action.EndTime = *input.EndTime
	}
	if input.ParticipantsCount != nil {
		action.ParticipantsCount = *input.ParticipantsCount
	}
	if input.BeneficiariesHelped != nil {
		action.BeneficiariesHelped = *input.BeneficiariesHelped
	}
	if input.MaterialsDistributed != nil {
		action.MaterialsDistributed = *input.MaterialsDistributed
	}
	if input.Notes != nil {
		action.Notes = *input.Notes
	}
	if input.IsActive != nil {
		action.IsActive = *input.IsActive
	}

	// Recurrence change: re-validate the whole triple
	if input.IsRecurring != nil || input.DayOfWeek != nil || input.ScheduledDate != nil {
		isRecurring := action.IsRecurring
		if input.IsRecurring != nil {
			isRecurring = *input.IsRecurring
		}
		dayOfWeek := action.DayOfWeek
		if input.DayOfWeek != nil {
			dayOfWeek = input.DayOfWeek
		}
		scheduledDate := ""
		if action.ScheduledDate != nil {
			scheduledDate = action.ScheduledDate.Format("2006-01-02")
		}
		if input.ScheduledDate != nil {
			scheduledDate = *input.ScheduledDate
		}
		// Switching modes clears the other side before validation
		if isRecurring {
			scheduledDate = ""
		} else {
			dayOfWeek = nil
		}

		parsedDate, err := validateRecurrence(isRecurring, dayOfWeek, scheduledDate)
		if err != nil {
			return nil, err
		}
		action.IsRecurring = isRecurring
		action.DayOfWeek = dayOfWeek
		action.ScheduledDate = parsedDate
	}

	if err := s.maraudeRepo.Update(ctx, action); err != nil {
		return nil, err
	}

	if input.Waypoints != nil {
		if err := s.maraudeRepo.ReplaceWaypoints(ctx, action.ID, buildWaypoints(*input.Waypoints)); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, action.ID)
}

// UpdateStatus changes the action lifecycle status
func (s *MaraudeService) UpdateStatus(ctx context.Context, id uint, status string, actor authz.Actor) (*models.MaraudeAction, error) {
	valid := false
	for _, st := range actionStatuses {
		if st == status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidActionStatus
	}

	action, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanEdit(actor, action.CreatedBy, action.AssociationID) {
		return nil, domain.ErrForbidden
	}

	action.Status = status
	if err := s.maraudeRepo.Update(ctx, action); err != nil {
		return nil, err
	}
	return action, nil
}

// Delete removes an action
func (s *MaraudeService) Delete(ctx context.Context, id uint, actor authz.Actor) error {
	action, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanEdit(actor, action.CreatedBy, action.AssociationID) {
		return domain.ErrForbidden
	}

	return s.maraudeRepo.Delete(ctx, id)
}

// List lists actions with pagination, optionally scoped to an association
func (s *MaraudeService) List(ctx context.Context, associationID *uint, offset, limit int) ([]*models.MaraudeAction, int64, error) {
	return s.maraudeRepo.List(ctx, associationID, offset, limit)
}

// TodayActive returns actions happening on now's calendar date
func (s *MaraudeService) TodayActive(ctx context.Context, now time.Time) ([]*models.MaraudeActionResponse, error) {
	actions, err := s.maraudeRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.MaraudeActionResponse, 0)
	for _, action := range actions {
		if schedule.IsHappeningToday(action, now) {
			result = append(result, s.BuildResponse(action, now))
		}
	}
	return result, nil
}

// WeeklySchedule groups active recurring actions by ISO weekday 1..7
func (s *MaraudeService) WeeklySchedule(ctx context.Context, now time.Time) (map[int][]*models.MaraudeActionResponse, error) {
	actions, err := s.maraudeRepo.ListRecurringActive(ctx)
	if err != nil {
		return nil, err
	}

	week := make(map[int][]*models.MaraudeActionResponse, 7)
	for day := 1; day <= 7; day++ {
		week[day] = []*models.MaraudeActionResponse{}
	}
	for _, action := range actions {
		if action.DayOfWeek == nil || *action.DayOfWeek < 1 || *action.DayOfWeek > 7 {
			continue
		}
		week[*action.DayOfWeek] = append(week[*action.DayOfWeek], s.BuildResponse(action, now))
	}
	return week, nil
}

// BuildResponse attaches schedule-derived fields to the action DTO
func (s *MaraudeService) BuildResponse(action *models.MaraudeAction, now time.Time) *models.MaraudeActionResponse {
	resp := action.ToResponse()
	resp.DayName = schedule.DayName(action)
	resp.IsToday = schedule.IsHappeningToday(action, now)
	if next := schedule.NextOccurrence(action, now); next != nil {
		d := next.Format("2006-01-02")
		resp.NextOccurrence = &d
	}
	return resp
}
