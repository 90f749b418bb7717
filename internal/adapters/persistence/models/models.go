package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
	RoleVolunteer   = "volunteer"
)

// Association represents associations table.
// Created through public registration with IsActive=false, pending admin approval.
type Association struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:150;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone     string         `gorm:"size:30" json:"phone"`
	Address   string         `gorm:"size:255" json:"address"`
	Website   string         `gorm:"size:255" json:"website"`
	IsActive  bool           `gorm:"default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Users   []User          `gorm:"foreignKey:AssociationID" json:"users,omitempty"`
	Actions []MaraudeAction `gorm:"foreignKey:AssociationID" json:"actions,omitempty"`
}

func (Association) TableName() string {
	return "associations"
}

// User represents users table
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	FirstName     string         `gorm:"size:100;not null" json:"first_name"`
	LastName      string         `gorm:"size:100;not null" json:"last_name"`
	Email         string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password      string         `gorm:"size:255;not null" json:"-"`
	Role          string         `gorm:"size:20;default:'volunteer'" json:"role"`
	Phone         string         `gorm:"size:30" json:"phone"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	AssociationID uint           `gorm:"not null;index" json:"association_id"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Association *Association `gorm:"foreignKey:AssociationID" json:"association,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID              uint      `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Phone           string    `json:"phone,omitempty"`
	IsActive        bool      `json:"is_active"`
	AssociationID   uint      `json:"association_id"`
	AssociationName string    `json:"association_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Role:          u.Role,
		Phone:         u.Phone,
		IsActive:      u.IsActive,
		AssociationID: u.AssociationID,
		CreatedAt:     u.CreatedAt,
	}
	if u.Association != nil {
		resp.AssociationName = u.Association.Name
	}
	return resp
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Association{},
		&User{},
		&RefreshToken{},
		&MaraudeAction{},
		&Waypoint{},
		&Merchant{},
		&DistributionType{},
		&MaraudeReport{},
		&ReportDistribution{},
		&ReportAlert{},
	)
}
