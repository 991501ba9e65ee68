package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyRegistered = errors.New("email already in use")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrLinkedInNotConnected   = errors.New("linkedin not connected")
	ErrLinkedInTokenExpired   = errors.New("linkedin token expired")
	ErrOAuthStateMismatch     = errors.New("oauth state missing or already used")
	ErrBillingNotConfigured   = errors.New("billing is not configured")
)

// QuotaExceededError is returned when the quota gate denies a request.
type QuotaExceededError struct {
	Model string
	Usage int
	Quota int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota reached for %s (%d/%d)", e.Model, e.Usage, e.Quota)
}

// ModelNotEnabledError is returned before any provider call when the requested
// model is not in the user's enabled set.
type ModelNotEnabledError struct {
	Model   string
	Enabled []string
}

func (e *ModelNotEnabledError) Error() string {
	return fmt.Sprintf("model %s is not enabled for this user", e.Model)
}

// CredentialMissingError is returned when the user holds no key for the model.
// Distinct from quota exhaustion. Instructions explain how to obtain a key for
// the model's provider family.
type CredentialMissingError struct {
	Model         string
	AvailableKeys []string
	Instructions  SetupInstructions
}

func (e *CredentialMissingError) Error() string {
	return fmt.Sprintf("API key not found for model %s", e.Model)
}

// UnsupportedModelError is returned by the registry boundary for unknown ids.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model: %s", e.Model)
}

// ProviderErrorKind classifies upstream failures for user-facing messages.
type ProviderErrorKind string

const (
	ProviderErrCredential     ProviderErrorKind = "credential"
	ProviderErrRateLimit      ProviderErrorKind = "rate_limit"
	ProviderErrNotImplemented ProviderErrorKind = "not_implemented"
	ProviderErrGeneric        ProviderErrorKind = "generic"
)

// ProviderError wraps an upstream provider failure. Message returns the
// classified user-facing text; the raw upstream body stays in Body for
// diagnostics and is never substituted for the classified message.
type ProviderError struct {
	Provider string
	Model    string
	Kind     ProviderErrorKind
	Status   int
	Body     string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Provider, e.Status)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Message is the user-facing headline for this failure class.
func (e *ProviderError) Message() string {
	switch e.Kind {
	case ProviderErrCredential:
		return fmt.Sprintf("%s API Key Error", e.Provider)
	case ProviderErrRateLimit:
		return "Rate Limit Exceeded"
	case ProviderErrNotImplemented:
		return fmt.Sprintf("%s is not implemented", e.Provider)
	default:
		return fmt.Sprintf("%s API Error", e.Provider)
	}
}

// Remediation is the user-facing hint for this failure class.
func (e *ProviderError) Remediation() string {
	switch e.Kind {
	case ProviderErrCredential:
		return "Invalid or expired API key. Please check your API key in the admin panel."
	case ProviderErrRateLimit:
		return "You have exceeded the API rate limit. Please try again later."
	case ProviderErrNotImplemented:
		return "This provider is not available yet. Please choose another model."
	default:
		return "Please check your API keys and model configuration."
	}
}

// classifyStatus maps an upstream HTTP status to a failure class.
func classifyStatus(status int) ProviderErrorKind {
	switch status {
	case 401, 403:
		return ProviderErrCredential
	case 429:
		return ProviderErrRateLimit
	default:
		return ProviderErrGeneric
	}
}

// OAuthExchangeError is returned when the code-for-token exchange or the
// subsequent profile fetch fails. The connection stays disconnected.
type OAuthExchangeError struct {
	Body string
	Err  error
}

func (e *OAuthExchangeError) Error() string {
	return fmt.Sprintf("linkedin oauth exchange failed: %v", e.Err)
}

func (e *OAuthExchangeError) Unwrap() error { return e.Err }

// PostError is returned when any step of a LinkedIn post fails. No partial
// post is ever recorded as successful.
type PostError struct {
	Body string
	Err  error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("linkedin post failed: %v", e.Err)
}

func (e *PostError) Unwrap() error { return e.Err }
