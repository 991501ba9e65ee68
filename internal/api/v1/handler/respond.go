package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Classified messages are never replaced by raw upstream bodies; the bodies
// ride along in the error/details fields for diagnostics.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		quotaErr       *service.QuotaExceededError
		notEnabledErr  *service.ModelNotEnabledError
		credErr        *service.CredentialMissingError
		unsupportedErr *service.UnsupportedModelError
		providerErr    *service.ProviderError
		oauthErr       *service.OAuthExchangeError
		postErr        *service.PostError
	)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already in use"})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
	case errors.As(err, &quotaErr):
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"message":   "Quota reached for " + quotaErr.Model,
			"model":     quotaErr.Model,
			"usage":     quotaErr.Usage,
			"quota":     quotaErr.Quota,
			"remaining": max(quotaErr.Quota-quotaErr.Usage, 0),
		})
	case errors.As(err, &notEnabledErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message":       "Model " + notEnabledErr.Model + " is not enabled for this user",
			"enabledModels": notEnabledErr.Enabled,
		})
	case errors.As(err, &credErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message":       "API key not found for model " + credErr.Model,
			"availableKeys": credErr.AvailableKeys,
			"instructions":  credErr.Instructions,
		})
	case errors.As(err, &unsupportedErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Unsupported model: " + unsupportedErr.Model,
		})
	case errors.Is(err, service.ErrOAuthStateMismatch):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Invalid or expired authorization state",
		})
	case errors.Is(err, service.ErrLinkedInNotConnected):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "LinkedIn not connected"})
	case errors.Is(err, service.ErrLinkedInTokenExpired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "LinkedIn token expired. Please reconnect."})
	case errors.Is(err, service.ErrBillingNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "Billing is not configured"})
	case errors.As(err, &providerErr):
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"message": providerErr.Message(),
			"details": providerErr.Remediation(),
			"error":   providerErr.Error(),
			"body":    providerErr.Body,
			"model":   providerErr.Model,
			"help":    service.InstructionsFor(providerErr.Model),
		})
	case errors.As(err, &oauthErr):
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"message": "Failed to connect LinkedIn",
			"error":   oauthErr.Body,
		})
	case errors.As(err, &postErr):
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"message": "Failed to post to LinkedIn",
			"error":   postErr.Body,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}
}
