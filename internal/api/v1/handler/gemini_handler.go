package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// GeminiHandler serves the text-generation routes. Each route maps to one
// content kind with its own prompt template.
type GeminiHandler struct {
	dispatch *service.DispatchService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewGeminiHandler(dispatch *service.DispatchService, v *validator.Validate, logger zerolog.Logger) *GeminiHandler {
	return &GeminiHandler{dispatch: dispatch, validate: v, logger: logger}
}

func (h *GeminiHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /gemini/blog", authMw(http.HandlerFunc(h.generateKind(model.ContentKindBlog))))
	mux.Handle("POST /gemini/linkedin", authMw(http.HandlerFunc(h.generateKind(model.ContentKindLinkedIn))))
	mux.Handle("POST /gemini/youtube", authMw(http.HandlerFunc(h.generateKind(model.ContentKindYouTube))))
	mux.Handle("POST /gemini/tweet", authMw(http.HandlerFunc(h.generateKind(model.ContentKindTweet))))
}

func (h *GeminiHandler) generateKind(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(middleware.UserContextKey).(string)
		if !ok || userID == "" {
			http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
			return
		}

		var req dto.GenerateTextRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.validate.Struct(&req); err != nil {
			http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
			return
		}

		result, err := h.dispatch.GenerateText(r.Context(), userID, req.Model, req.Topic, kind)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := dto.GenerateTextResponseDTO{Content: result.Content}
		if result.Metered {
			resp.Usage = &result.Usage
			resp.Quota = &result.Quota
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
