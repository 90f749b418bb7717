package models

import (
	"time"

	"gorm.io/gorm"
)

// Maraude action statuses
const (
	ActionStatusPlanned    = "planned"
	ActionStatusInProgress = "in_progress"
	ActionStatusCompleted  = "completed"
	ActionStatusCancelled  = "cancelled"
)

// MaraudeAction represents maraude_actions table.
// Either recurring (DayOfWeek 1=Monday..7=Sunday set, no ScheduledDate)
// or one-time (ScheduledDate set, no DayOfWeek).
type MaraudeAction struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Title                string         `gorm:"size:150;not null" json:"title"`
	Description          string         `gorm:"type:text" json:"description"`
	StartLat             float64        `gorm:"not null" json:"start_lat"`
	StartLng             float64        `gorm:"not null" json:"start_lng"`
	StartAddress         string         `gorm:"size:255" json:"start_address"`
	RoutePolyline        string         `gorm:"type:text" json:"route_polyline"`
	EstimatedDistance    float64        `json:"estimated_distance"`
	EstimatedDuration    int            `json:"estimated_duration"`
	DayOfWeek            *int           `json:"day_of_week"`
	IsRecurring          bool           `gorm:"default:false" json:"is_recurring"`
	ScheduledDate        *time.Time     `gorm:"type:date" json:"scheduled_date"`
	StartTime            string         `gorm:"size:5" json:"start_time"`
	EndTime              string         `gorm:"size:5" json:"end_time"`
	Status               string         `gorm:"size:20;not null;default:'planned'" json:"status"`
	ParticipantsCount    int            `gorm:"default:0" json:"participants_count"`
	BeneficiariesHelped  int            `gorm:"default:0" json:"beneficiaries_helped"`
	MaterialsDistributed JSONMap        `gorm:"type:text" json:"materials_distributed"`
	Notes                string         `gorm:"type:text" json:"notes"`
	IsActive             bool           `gorm:"default:true" json:"is_active"`
	CreatedBy            uint           `gorm:"not null" json:"created_by"`
	AssociationID        uint           `gorm:"not null;index" json:"association_id"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Waypoints   []Waypoint   `gorm:"foreignKey:MaraudeActionID" json:"waypoints,omitempty"`
	Creator     *User        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Association *Association `gorm:"foreignKey:AssociationID" json:"association,omitempty"`
}

func (MaraudeAction) TableName() string {
	return "maraude_actions"
}

// Waypoint is an ordered route stop of a maraude action.
// The full set is replaced on action update, never merged.
type Waypoint struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	MaraudeActionID uint    `gorm:"not null;index" json:"maraude_action_id"`
	Lat             float64 `gorm:"not null" json:"lat"`
	Lng             float64 `gorm:"not null" json:"lng"`
	Address         string  `gorm:"size:255" json:"address,omitempty"`
	Name            string  `gorm:"size:150" json:"name,omitempty"`
	Position        int     `gorm:"not null" json:"order"`
}

func (Waypoint) TableName() string {
	return "maraude_waypoints"
}

// MaraudeActionResponse DTO with schedule-derived fields attached
type MaraudeActionResponse struct {
	ID                   uint       `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	StartLat             float64    `json:"start_lat"`
	StartLng             float64    `json:"start_lng"`
	StartAddress         string     `json:"start_address,omitempty"`
	RoutePolyline        string     `json:"route_polyline,omitempty"`
	EstimatedDistance    float64    `json:"estimated_distance,omitempty"`
	EstimatedDuration    int        `json:"estimated_duration,omitempty"`
	DayOfWeek            *int       `json:"day_of_week"`
	DayName              string     `json:"day_name"`
	IsRecurring          bool       `json:"is_recurring"`
	ScheduledDate        *string    `json:"scheduled_date"`
	StartTime            string     `json:"start_time,omitempty"`
	EndTime              string     `json:"end_time,omitempty"`
	Status               string     `json:"status"`
	ParticipantsCount    int        `json:"participants_count"`
	BeneficiariesHelped  int        `json:"beneficiaries_helped"`
	MaterialsDistributed JSONMap    `json:"materials_distributed,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	IsActive             bool       `json:"is_active"`
	IsToday              bool       `json:"is_today"`
	NextOccurrence       *string    `json:"next_occurrence"`
	Waypoints            []Waypoint `json:"waypoints"`
	CreatedBy            uint       `json:"created_by"`
	CreatorName          string     `json:"creator_name,omitempty"`
	AssociationID        uint       `json:"association_id"`
	AssociationName      string     `json:"association_name,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ToResponse maps persisted fields; schedule-derived fields (DayName,
// IsToday, NextOccurrence) are attached by the maraude service.
func (a *MaraudeAction) ToResponse() *MaraudeActionResponse {
	resp := &MaraudeActionResponse{
		ID:                   a.ID,
		Title:                a.Title,
		Description:          a.Description,
		StartLat:             a.StartLat,
		StartLng:             a.StartLng,
		StartAddress:         a.StartAddress,
		RoutePolyline:        a.RoutePolyline,
		EstimatedDistance:    a.EstimatedDistance,
		EstimatedDuration:    a.EstimatedDuration,
		DayOfWeek:            a.DayOfWeek,
		IsRecurring:          a.IsRecurring,
		StartTime:            a.StartTime,
		EndTime:              a.EndTime,
		Status:               a.Status,
		ParticipantsCount:    a.ParticipantsCount,
		BeneficiariesHelped:  a.BeneficiariesHelped,
		MaterialsDistributed: a.MaterialsDistributed,
		Notes:                a.Notes,
		IsActive:             a.IsActive,
		Waypoints:            a.Waypoints,
		CreatedBy:            a.CreatedBy,
		AssociationID:        a.AssociationID,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
	if a.ScheduledDate != nil {
		d := a.ScheduledDate.Format("2006-01-02")
		resp.ScheduledDate = &d
	}
	if resp.Waypoints == nil {
		resp.Waypoints = []Waypoint{}
	}
	if a.Creator != nil {
		resp.CreatorName = a.Creator.FullName()
	}
	if a.Association != nil {
		resp.AssociationName = a.Association.Name
	}
	return resp
}
