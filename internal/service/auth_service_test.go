package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/util"
)

func TestRegisterDefaults(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := NewAuthService(userRepo, &fakeContentRepo{}, "secret")

	u, err := svc.Register(context.Background(), "new@example.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected a generated user id")
	}
	if u.PasswordHash == "password123" || u.PasswordHash == "" {
		t.Fatal("expected password to be stored hashed")
	}
	if u.SubscriptionStatus != "inactive" {
		t.Fatalf("expected inactive subscription status, got %q", u.SubscriptionStatus)
	}
	if len(u.EnabledModels) != 1 || u.EnabledModels[0] != "gemini" {
		t.Fatalf("expected gemini as the only enabled model, got %v", u.EnabledModels)
	}
	if u.IsAdmin {
		t.Fatal("new users must not be admins")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := NewAuthService(userRepo, &fakeContentRepo{}, "secret")

	if _, err := svc.Register(context.Background(), "dup@example.com", "password123"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	_, err := svc.Register(context.Background(), "dup@example.com", "password456")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := NewAuthService(userRepo, &fakeContentRepo{}, "secret")

	u, err := svc.Register(context.Background(), "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	claims, err := util.ValidateJWT(token, "secret")
	if err != nil {
		t.Fatalf("issued token did not validate: %v", err)
	}
	if claims.UserID != u.ID {
		t.Fatalf("expected token for user %s, got %s", u.ID, claims.UserID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := NewAuthService(userRepo, &fakeContentRepo{}, "secret")

	if _, err := svc.Register(context.Background(), "login@example.com", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "login@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, &fakeContentRepo{}, "secret")
	if _, err := svc.Login(context.Background(), "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
