package util

import (
	"testing"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("user-123", true, "test-secret")
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateJWT returned error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("expected user ID 'user-123', got %q", claims.UserID)
	}
	if !claims.IsAdmin {
		t.Fatal("expected admin claim to be true")
	}
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-123", false, "test-secret")
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}
	if _, err := ValidateJWT(token, "another-secret"); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateJWTGarbage(t *testing.T) {
	if _, err := ValidateJWT("not-a-token", "test-secret"); err == nil {
		t.Fatal("expected validation to fail for a malformed token")
	}
}
