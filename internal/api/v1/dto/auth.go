package dto

import (
	"time"

	"app/internal/model"
)

type RegisterRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponseDTO struct {
	Token string `json:"token"`
}

type AISettingsRequestDTO struct {
	APIKeys       map[string]string `json:"apiKeys" validate:"required"`
	EnabledModels []string          `json:"enabledModels" validate:"required"`
}

type AISettingsResponseDTO struct {
	APIKeys       map[string]string `json:"apiKeys"`
	EnabledModels []string          `json:"enabledModels"`
	Email         string            `json:"email"`
}

type MeResponseDTO struct {
	ID                 string                `json:"id"`
	Email              string                `json:"email"`
	IsAdmin            bool                  `json:"isAdmin"`
	SubscriptionStatus string                `json:"subscriptionStatus"`
	APIKeys            map[string]string     `json:"apiKeys"`
	EnabledModels      []string              `json:"enabledModels"`
	APIUsage           map[string]int        `json:"apiUsage"`
	APIQuota           map[string]int        `json:"apiQuota"`
	LinkedIn           *model.LinkedInLink   `json:"linkedin,omitempty"`
	GeneratedContent   []model.ContentRecord `json:"generatedContent"`
	CreatedAt          time.Time             `json:"createdAt"`
}
