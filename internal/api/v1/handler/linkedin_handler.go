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

type LinkedInHandler struct {
	linkedin *service.LinkedInService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewLinkedInHandler(linkedin *service.LinkedInService, v *validator.Validate, logger zerolog.Logger) *LinkedInHandler {
	return &LinkedInHandler{linkedin: linkedin, validate: v, logger: logger}
}

func (h *LinkedInHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /linkedin/auth-url", authMw(http.HandlerFunc(h.authURL)))
	mux.Handle("GET /linkedin/callback", authMw(http.HandlerFunc(h.callback)))
	mux.Handle("GET /linkedin/status", authMw(http.HandlerFunc(h.status)))
	mux.Handle("POST /linkedin/disconnect", authMw(http.HandlerFunc(h.disconnect)))
	mux.Handle("POST /linkedin/post", authMw(http.HandlerFunc(h.post)))
}

func (h *LinkedInHandler) authURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	authURL, state, err := h.linkedin.AuthURL(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthURLResponseDTO{AuthURL: authURL, State: state})
}

func (h *LinkedInHandler) callback(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
		return
	}

	profile, err := h.linkedin.Exchange(r.Context(), userID, code, state)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CallbackResponseDTO{
		Success: true,
		Message: "LinkedIn account connected",
		Profile: dto.ProfileDTO{ID: profile.ID, Name: profile.Name},
	})
}

func (h *LinkedInHandler) status(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	status, err := h.linkedin.Status(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LinkedInStatusResponseDTO{
		Connected:   status.Connected,
		ProfileName: status.ProfileName,
		ProfileID:   status.ProfileID,
	})
}

func (h *LinkedInHandler) disconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.linkedin.Disconnect(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "LinkedIn account disconnected"})
}

func (h *LinkedInHandler) post(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.PostRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	postID, err := h.linkedin.Post(r.Context(), userID, req.Content, req.ImageData)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PostResponseDTO{
		Success: true,
		Message: "Posted to LinkedIn",
		PostID:  postID,
	})
}
