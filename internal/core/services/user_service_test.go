package services

import (
	"context"
	"errors"
	"testing"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"
	"solidarite-maraude/internal/pkg/password"

	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(repositories.NewUserRepository(db))
}

func stringPointer(v string) *string { return &v }

func boolPointer(v bool) *bool { return &v }

func TestUpdateUser_RoleAndActivationAdminOnly(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newUserService(db)
	ctx := context.Background()
	coordinator := actorFor(f.coordinator)
	admin := authz.Actor{ID: 100, AssociationID: f.association.ID, Role: models.RoleAdmin}

	// Coordinators cannot change a member's role
	role := models.RoleCoordinator
	if _, err := svc.Update(ctx, f.volunteer.ID, &UpdateUserInput{Role: &role}, coordinator); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("coordinator role change: expected ErrForbidden, got %v", err)
	}

	// Nor flip activation
	if _, err := svc.Update(ctx, f.volunteer.ID, &UpdateUserInput{IsActive: boolPointer(false)}, coordinator); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("coordinator isActive change: expected ErrForbidden, got %v", err)
	}

	// Name and phone edits stay open to coordinators of the association
	updated, err := svc.Update(ctx, f.volunteer.ID, &UpdateUserInput{
		FirstName: stringPointer("Marion"),
		Phone:     stringPointer("0601020304"),
	}, coordinator)
	if err != nil {
		t.Fatalf("coordinator name/phone update failed: %v", err)
	}
	if updated.FirstName != "Marion" || updated.Phone != "0601020304" {
		t.Errorf("unexpected fields after update: %q / %q", updated.FirstName, updated.Phone)
	}

	// Admins change both
	updated, err = svc.Update(ctx, f.volunteer.ID, &UpdateUserInput{Role: &role, IsActive: boolPointer(false)}, admin)
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Role != models.RoleCoordinator || updated.IsActive {
		t.Errorf("role = %q isActive = %v, want coordinator/false", updated.Role, updated.IsActive)
	}

	// Unknown role values are rejected even for admins
	bad := "superuser"
	if _, err := svc.Update(ctx, f.volunteer.ID, &UpdateUserInput{Role: &bad}, admin); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUpdateUser_OtherAssociationForbidden(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newUserService(db)

	outsider := authz.Actor{ID: 50, AssociationID: f.association.ID + 1, Role: models.RoleCoordinator}
	if _, err := svc.Update(context.Background(), f.volunteer.ID, &UpdateUserInput{FirstName: stringPointer("X")}, outsider); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outside coordinator, got %v", err)
	}
}

func TestDeleteUser_SelfDeleteRejected(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newUserService(db)
	ctx := context.Background()

	var validation *domain.ValidationError
	if err := svc.Delete(ctx, f.coordinator.ID, actorFor(f.coordinator)); !errors.As(err, &validation) {
		t.Fatalf("self delete: expected validation error, got %v", err)
	}

	if err := svc.Delete(ctx, f.volunteer.ID, actorFor(f.coordinator)); err != nil {
		t.Fatalf("coordinator deleting a member failed: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newUserService(db)
	ctx := context.Background()

	hashed, err := password.Hash("Ancien-mdp1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", f.volunteer.ID).Update("password", hashed).Error; err != nil {
		t.Fatalf("failed to seed password: %v", err)
	}

	if err := svc.ChangePassword(ctx, f.volunteer.ID, "mauvais", "Nouveau-mdp1"); !errors.Is(err, ErrWrongOldPassword) {
		t.Fatalf("expected ErrWrongOldPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, f.volunteer.ID, "Ancien-mdp1", "court"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, f.volunteer.ID, "Ancien-mdp1", "Nouveau-mdp1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
}
