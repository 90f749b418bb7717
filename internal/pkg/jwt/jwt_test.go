package jwt

import (
	"errors"
	"testing"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(7, 3, "marie@restosderue.fr", "volunteer", "secret", 15)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ValidateAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != 7 || claims.AssociationID != 3 {
		t.Errorf("claims = user %d assoc %d, want 7/3", claims.UserID, claims.AssociationID)
	}
	if claims.Role != "volunteer" || claims.Email != "marie@restosderue.fr" {
		t.Errorf("unexpected identity claims: %+v", claims)
	}

	if _, err := ValidateAccessToken(token, "other-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid with wrong secret, got: %v", err)
	}
}

func TestExpiredAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(7, 3, "marie@restosderue.fr", "volunteer", "secret", -1)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ValidateAccessToken(token, "secret"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got: %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-1", "refresh-secret", 7)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	claims, err := ValidateRefreshToken(token, "refresh-secret")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != 7 || claims.TokenID != "token-id-1" {
		t.Errorf("claims = user %d tokenID %q, want 7/token-id-1", claims.UserID, claims.TokenID)
	}
}
