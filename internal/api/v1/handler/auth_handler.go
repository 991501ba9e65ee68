package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService *service.AuthService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewAuthHandler(authService *service.AuthService, v *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, validate: v, logger: logger}
}

// RegisterRoutes mounts auth routes
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.Handle("GET /auth/me", authMw(http.HandlerFunc(h.me)))
	mux.Handle("PUT /auth/me/ai-settings", authMw(http.HandlerFunc(h.updateAISettings)))
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.authService.Register(r.Context(), req.Email, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TokenResponseDTO{Token: token})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	user, records, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := dto.MeResponseDTO{
		ID:                 user.ID,
		Email:              user.Email,
		IsAdmin:            user.IsAdmin,
		SubscriptionStatus: user.SubscriptionStatus,
		APIKeys:            user.APIKeys,
		EnabledModels:      user.EnabledModels,
		APIUsage:           user.APIUsage,
		APIQuota:           user.APIQuota,
		LinkedIn:           user.LinkedIn,
		GeneratedContent:   records,
		CreatedAt:          user.CreatedAt,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) updateAISettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.AISettingsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.authService.UpdateAISettings(r.Context(), userID, req.APIKeys, req.EnabledModels)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AISettingsResponseDTO{
		APIKeys:       user.APIKeys,
		EnabledModels: user.EnabledModels,
		Email:         user.Email,
	})
}
