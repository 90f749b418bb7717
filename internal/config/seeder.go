package config

import (
	"log"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedDistributionTypes(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDistributionTypes seeds the reference distribution types
func (s *Seeder) seedDistributionTypes() error {
	var count int64
	s.db.Model(&models.DistributionType{}).Count(&count)
	if count > 0 {
		return nil
	}

	types := []models.DistributionType{
		{Name: "Repas chaud", Category: models.DistributionCategoryMeal, Icon: "restaurant", Color: "#e67e22", IsActive: true},
		{Name: "Sandwich", Category: models.DistributionCategoryMeal, Icon: "lunch_dining", Color: "#f39c12", IsActive: true},
		{Name: "Boisson chaude", Category: models.DistributionCategoryMeal, Icon: "coffee", Color: "#795548", IsActive: true},
		{Name: "Kit hygiène", Category: models.DistributionCategoryHygiene, Icon: "soap", Color: "#3498db", IsActive: true},
		{Name: "Vêtements", Category: models.DistributionCategoryClothing, Icon: "checkroom", Color: "#9b59b6", IsActive: true},
		{Name: "Couverture", Category: models.DistributionCategoryClothing, Icon: "bed", Color: "#8e44ad", IsActive: true},
		{Name: "Soins de premiers secours", Category: models.DistributionCategoryMedical, Icon: "medical_services", Color: "#e74c3c", IsActive: true},
		{Name: "Autre", Category: models.DistributionCategoryOther, Icon: "category", Color: "#7f8c8d", IsActive: true},
	}

	if err := s.db.Create(&types).Error; err != nil {
		return err
	}

	log.Printf("🌱 Seeded %d distribution types", len(types))
	return nil
}

// seedAdminUser seeds a default admin user and its bootstrap association.
// Development/testing only; in production create the admin through a
// secure process and change this password immediately.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	association := &models.Association{
		Name:     "Administration",
		Email:    "admin@solidarite-maraude.fr",
		IsActive: true,
	}
	if err := s.db.Where(models.Association{Email: association.Email}).
		FirstOrCreate(association).Error; err != nil {
		return err
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		FirstName:     "Admin",
		LastName:      "Platform",
		Email:         "admin@solidarite-maraude.fr",
		Password:      hashedPassword,
		Role:          models.RoleAdmin,
		IsActive:      true,
		AssociationID: association.ID,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("🌱 Seeded default admin user")
	return nil
}
