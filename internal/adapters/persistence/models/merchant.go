package models

import (
	"time"

	"gorm.io/gorm"
)

// Merchant categories
const (
	MerchantCategoryFood     = "food"
	MerchantCategoryHealth   = "health"
	MerchantCategoryHygiene  = "hygiene"
	MerchantCategoryClothing = "clothing"
	MerchantCategoryServices = "services"
	MerchantCategoryOther    = "other"
)

// MerchantCategories lists the accepted category values
var MerchantCategories = []string{
	MerchantCategoryFood,
	MerchantCategoryHealth,
	MerchantCategoryHygiene,
	MerchantCategoryClothing,
	MerchantCategoryServices,
	MerchantCategoryOther,
}

// Merchant represents merchants table, the partner shops offering
// services to beneficiaries. Verification is admin-gated.
type Merchant struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Name                string         `gorm:"size:150;not null" json:"name"`
	Description         string         `gorm:"type:text" json:"description"`
	Category            string         `gorm:"size:30;not null" json:"category"`
	Services            StringList     `gorm:"type:text" json:"services"`
	Lat                 float64        `gorm:"not null" json:"lat"`
	Lng                 float64        `gorm:"not null" json:"lng"`
	Address             string         `gorm:"size:255" json:"address"`
	Phone               string         `gorm:"size:30" json:"phone"`
	Email               string         `gorm:"size:100" json:"email"`
	Website             string         `gorm:"size:255" json:"website"`
	OpeningHours        JSONMap        `gorm:"type:text" json:"opening_hours"`
	SpecialInstructions string         `gorm:"type:text" json:"special_instructions"`
	IsVerified          bool           `gorm:"default:false" json:"is_verified"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`
	ContactPerson       string         `gorm:"size:150" json:"contact_person"`
	AddedBy             *uint          `json:"added_by"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	Contributor *User `gorm:"foreignKey:AddedBy" json:"contributor,omitempty"`
}

func (Merchant) TableName() string {
	return "merchants"
}

// IsValidMerchantCategory checks a category value against the accepted set
func IsValidMerchantCategory(category string) bool {
	for _, c := range MerchantCategories {
		if c == category {
			return true
		}
	}
	return false
}
