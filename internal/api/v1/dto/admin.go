package dto

import (
	"time"

	"app/internal/model"
)

type AdminUserResponseDTO struct {
	ID                 string         `json:"id"`
	Email              string         `json:"email"`
	IsAdmin            bool           `json:"isAdmin"`
	SubscriptionStatus string         `json:"subscriptionStatus"`
	EnabledModels      []string       `json:"enabledModels"`
	APIUsage           map[string]int `json:"apiUsage"`
	APIQuota           map[string]int `json:"apiQuota"`
	CreatedAt          time.Time      `json:"createdAt"`
}

type AdminUpdateUserRequestDTO struct {
	IsAdmin            *bool   `json:"isAdmin"`
	SubscriptionStatus *string `json:"subscriptionStatus"`
}

type ToggleFeatureRequestDTO struct {
	Feature string `json:"feature" validate:"required"`
	Enabled bool   `json:"enabled"`
}

func NewAdminUserResponseDTO(u *model.User) AdminUserResponseDTO {
	return AdminUserResponseDTO{
		ID:                 u.ID,
		Email:              u.Email,
		IsAdmin:            u.IsAdmin,
		SubscriptionStatus: u.SubscriptionStatus,
		EnabledModels:      u.EnabledModels,
		APIUsage:           u.APIUsage,
		APIQuota:           u.APIQuota,
		CreatedAt:          u.CreatedAt,
	}
}
