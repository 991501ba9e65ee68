package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AdminHandler serves the admin-only routes. Every route is mounted behind
// both the auth and admin middleware.
type AdminHandler struct {
	adminService *service.AdminService
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewAdminHandler(adminService *service.AdminService, v *validator.Validate, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, validate: v, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, authMw, adminMw func(http.Handler) http.Handler) {
	guard := func(fn http.HandlerFunc) http.Handler {
		return authMw(adminMw(fn))
	}
	mux.Handle("GET /admin/users", guard(h.listUsers))
	mux.Handle("PUT /admin/users/{id}", guard(h.updateUser))
	mux.Handle("DELETE /admin/users/{id}", guard(h.deleteUser))
	mux.Handle("GET /admin/users/{id}/ai-settings", guard(h.getAISettings))
	mux.Handle("PUT /admin/users/{id}/ai-settings", guard(h.updateAISettings))
	mux.Handle("GET /admin/features", guard(h.listFeatures))
	mux.Handle("POST /admin/toggle-feature", guard(h.toggleFeature))
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]dto.AdminUserResponseDTO, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewAdminUserResponseDTO(&users[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req dto.AdminUpdateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), id, req.IsAdmin, req.SubscriptionStatus)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewAdminUserResponseDTO(user))
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *AdminHandler) getAISettings(w http.ResponseWriter, r *http.Request) {
	user, err := h.adminService.GetAISettings(r.Context(), r.PathValue("id"))
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

func (h *AdminHandler) updateAISettings(w http.ResponseWriter, r *http.Request) {
	var req dto.AISettingsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.adminService.UpdateAISettings(r.Context(), r.PathValue("id"), req.APIKeys, req.EnabledModels)
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

func (h *AdminHandler) listFeatures(w http.ResponseWriter, r *http.Request) {
	toggles, err := h.adminService.ListFeatureToggles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggles)
}

func (h *AdminHandler) toggleFeature(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleFeatureRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	toggle, err := h.adminService.UpsertFeatureToggle(r.Context(), req.Feature, req.Enabled)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggle)
}
