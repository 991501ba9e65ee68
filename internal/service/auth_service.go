package service

import (
	"context"
	"errors"

	"app/internal/model"
	"app/internal/repository"
	"app/internal/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login, and the user's own record.
type AuthService struct {
	userRepo    repository.UserRepository
	contentRepo repository.ContentRepository
	jwtSecret   string
}

func NewAuthService(userRepo repository.UserRepository, contentRepo repository.ContentRepository, jwtSecret string) *AuthService {
	return &AuthService{userRepo: userRepo, contentRepo: contentRepo, jwtSecret: jwtSecret}
}

// Register creates a user with default settings. A duplicate email fails with
// ErrEmailAlreadyRegistered and creates no record.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:                 uuid.NewString(),
		Email:              email,
		PasswordHash:       string(hash),
		SubscriptionStatus: "inactive",
		EnabledModels:      []string{"gemini"},
		APIKeys:            map[string]string{},
		APIUsage:           map[string]int{},
		APIQuota:           map[string]int{},
	}
	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the password and issues a bearer token carrying the user id
// and admin flag.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	return util.GenerateJWT(u.ID, u.IsAdmin, s.jwtSecret)
}

// Me returns the user's record together with their generation history.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, []model.ContentRecord, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, ErrUserNotFound
	}
	records, err := s.contentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return u, records, nil
}

// UpdateAISettings replaces the user's credential map and enabled-model set.
// Credentials are one canonical map[string]string end to end.
func (s *AuthService) UpdateAISettings(ctx context.Context, userID string, apiKeys map[string]string, enabledModels []string) (*model.User, error) {
	u, err := s.userRepo.UpdateAISettings(ctx, userID, apiKeys, enabledModels)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
