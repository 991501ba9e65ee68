package service

import (
	"context"

	"app/internal/model"
	"app/internal/repository"
)

// AdminService backs the admin-only user and feature-toggle administration.
type AdminService struct {
	userRepo    repository.UserRepository
	contentRepo repository.ContentRepository
	featureRepo repository.FeatureRepository
}

func NewAdminService(userRepo repository.UserRepository, contentRepo repository.ContentRepository, featureRepo repository.FeatureRepository) *AdminService {
	return &AdminService{userRepo: userRepo, contentRepo: contentRepo, featureRepo: featureRepo}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListUsers(ctx)
}

// UpdateUser patches the admin flag and/or subscription status; nil fields
// are left unchanged.
func (s *AdminService) UpdateUser(ctx context.Context, id string, isAdmin *bool, subscriptionStatus *string) (*model.User, error) {
	u, err := s.userRepo.UpdateUserFlags(ctx, id, isAdmin, subscriptionStatus)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// DeleteUser removes the user and their content history.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.contentRepo.DeleteByUser(ctx, id); err != nil {
		return err
	}
	return s.userRepo.DeleteUser(ctx, id)
}

// GetAISettings returns a user's credential map and enabled models.
func (s *AdminService) GetAISettings(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateAISettings replaces a user's credential map and enabled models.
func (s *AdminService) UpdateAISettings(ctx context.Context, id string, apiKeys map[string]string, enabledModels []string) (*model.User, error) {
	u, err := s.userRepo.UpdateAISettings(ctx, id, apiKeys, enabledModels)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AdminService) ListFeatureToggles(ctx context.Context) ([]model.FeatureToggle, error) {
	return s.featureRepo.ListToggles(ctx)
}

func (s *AdminService) UpsertFeatureToggle(ctx context.Context, feature string, enabled bool) (*model.FeatureToggle, error) {
	return s.featureRepo.UpsertToggle(ctx, feature, enabled)
}
