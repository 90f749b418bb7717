package services

import (
	"context"
	"errors"
	"testing"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/config"
	"solidarite-maraude/internal/core/domain"

	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test_secret",
			RefreshSecret:    "test_refresh_secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		repositories.NewAssociationRepository(db),
		testConfig(),
	)
}

func TestRegisterAssociation(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	input := &RegisterAssociationInput{Name: "Solidarité Nord", Email: "contact@solidnord.fr"}
	association, err := svc.RegisterAssociation(ctx, input)
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if association.IsActive {
		t.Error("new association should await admin approval")
	}

	if _, err := svc.RegisterAssociation(ctx, input); !errors.Is(err, domain.ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got: %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newAuthService(db)
	ctx := context.Background()

	input := &RegisterInput{
		FirstName:     "Léa",
		LastName:      "Bernard",
		Email:         "lea@restosderue.fr",
		Password:      "Str0ngPass!",
		AssociationID: f.association.ID,
	}
	resp, err := svc.Register(ctx, input)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected a token pair on registration")
	}
	if resp.User.Role != models.RoleVolunteer {
		t.Errorf("role = %q, want volunteer", resp.User.Role)
	}

	// Email is unique
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got: %v", err)
	}

	// Weak passwords are rejected up front
	weak := *input
	weak.Email = "autre@restosderue.fr"
	weak.Password = "abc"
	if _, err := svc.Register(ctx, &weak); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got: %v", err)
	}

	login, err := svc.Login(ctx, &LoginInput{Email: input.Email, Password: input.Password})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("logged in as user %d, want %d", login.User.ID, resp.User.ID)
	}

	if _, err := svc.Login(ctx, &LoginInput{Email: input.Email, Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
	if _, err := svc.Login(ctx, &LoginInput{Email: "nobody@restosderue.fr", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got: %v", err)
	}
}

func TestRegister_AssociationGating(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	pending := models.Association{Name: "En attente", Email: "contact@attente.fr", IsActive: false}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("failed to seed association: %v", err)
	}

	input := &RegisterInput{
		FirstName: "Paul", LastName: "Petit", Email: "paul@attente.fr",
		Password: "Str0ngPass!", AssociationID: pending.ID,
	}
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrAssociationInactive) {
		t.Fatalf("expected ErrAssociationInactive, got: %v", err)
	}

	input.AssociationID = pending.ID + 100
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrAssociationNotFound) {
		t.Fatalf("expected ErrAssociationNotFound, got: %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		FirstName: "Léa", LastName: "Bernard", Email: "lea@restosderue.fr",
		Password: "Str0ngPass!", AssociationID: f.association.ID,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == resp.RefreshToken {
		t.Error("refresh should rotate the refresh token")
	}

	// The old token was revoked on rotation
	if _, err := svc.RefreshToken(ctx, resp.RefreshToken); err == nil {
		t.Fatal("expected reuse of a rotated token to be rejected")
	}

	if _, err := svc.RefreshToken(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestLogout(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		FirstName: "Léa", LastName: "Bernard", Email: "lea@restosderue.fr",
		Password: "Str0ngPass!", AssociationID: f.association.ID,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Logout(ctx, resp.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, resp.RefreshToken); err == nil {
		t.Fatal("expected a revoked token to be rejected")
	}
}
