package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ImageHandler serves image generation plus the provider utility routes
// (credential probe, engine listing).
type ImageHandler struct {
	dispatch *service.DispatchService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewImageHandler(dispatch *service.DispatchService, v *validator.Validate, logger zerolog.Logger) *ImageHandler {
	return &ImageHandler{dispatch: dispatch, validate: v, logger: logger}
}

func (h *ImageHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /image-generation/generate-image", authMw(http.HandlerFunc(h.generate)))
	mux.Handle("POST /image-generation/test-nvidia-key", authMw(http.HandlerFunc(h.testNvidiaKey)))
	mux.Handle("GET /image-generation/list-sd-engines", authMw(http.HandlerFunc(h.listStabilityEngines)))
}

func (h *ImageHandler) generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.GenerateImageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.dispatch.GenerateImage(r.Context(), userID, req.Model, service.ImageRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Size:           req.Size,
		Style:          req.Style,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Header().Set("X-Model-Used", result.UsedModel)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.Error().Err(err).Msg("failed to write image response")
	}
}

func (h *ImageHandler) testNvidiaKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.TestNvidiaKeyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	raw, err := h.dispatch.TestNvidiaKey(r.Context(), userID, req.Model)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TestNvidiaKeyResponseDTO{
		Success:      true,
		Message:      "API key is valid",
		ResponseData: raw,
	})
}

func (h *ImageHandler) listStabilityEngines(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	engines, err := h.dispatch.ListStabilityEngines(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := dto.ListEnginesResponseDTO{Engines: make([]dto.EngineDTO, 0, len(engines))}
	for _, e := range engines {
		resp.Engines = append(resp.Engines, dto.EngineDTO{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Type:        e.Type,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
