package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

const (
	// Models in the NVIDIA family may retry once against this fallback when
	// the primary call fails and the user holds a credential for it.
	imageFallbackModel = "dall-e-3"
	nvidiaFamilyPrefix = "nvidia-"

	defaultTextModel = "gemini"
)

// Prompt templates per content kind.
var textPrompts = map[string]string{
	model.ContentKindBlog:     "Write a detailed blog post about: %s",
	model.ContentKindLinkedIn: "Write a professional LinkedIn post about: %s",
	model.ContentKindYouTube:  "Generate a YouTube video title, description, hashtags, and captions for: %s",
	model.ContentKindTweet:    "Write a creative tweet about: %s",
}

// TextResult is the outcome of a text generation call. Usage and Quota are
// only meaningful when the call was quota-metered.
type TextResult struct {
	Content string
	Usage   int
	Quota   int
	Metered bool
}

// ImageResult carries the generated bytes plus the response metadata the
// boundary needs.
type ImageResult struct {
	Data           []byte
	MimeType       string
	RequestedModel string
	UsedModel      string
	Usage          int
	Quota          int
}

// KeyVerifier probes a provider credential.
type KeyVerifier interface {
	VerifyKey(ctx context.Context, apiKey string) (json.RawMessage, error)
}

// EngineLister fetches the provider-reported engine list for a credential.
type EngineLister interface {
	ListEngines(ctx context.Context, apiKey string) ([]Engine, error)
}

// DispatchService routes generation requests to external providers: it
// authorizes the user, gates on quota, invokes the provider (with single
// fallback for images), and records usage and content.
type DispatchService struct {
	userRepo    repository.UserRepository
	contentRepo repository.ContentRepository
	registry    *ProviderRegistry
	textGen     TextGenerator
	nvidiaProbe KeyVerifier
	engines     EngineLister
	logger      zerolog.Logger
}

func NewDispatchService(
	userRepo repository.UserRepository,
	contentRepo repository.ContentRepository,
	registry *ProviderRegistry,
	textGen TextGenerator,
	nvidiaProbe KeyVerifier,
	engines EngineLister,
	logger zerolog.Logger,
) *DispatchService {
	lg := logger.With().Str("service", "DispatchService").Logger()
	return &DispatchService{
		userRepo:    userRepo,
		contentRepo: contentRepo,
		registry:    registry,
		textGen:     textGen,
		nvidiaProbe: nvidiaProbe,
		engines:     engines,
		logger:      lg,
	}
}

// GenerateText produces content of the given kind for a topic. Only blog
// generation is quota-metered; the other kinds record content without
// touching the counters.
func (s *DispatchService) GenerateText(ctx context.Context, userID, modelID, topic, kind string) (*TextResult, error) {
	template, ok := textPrompts[kind]
	if !ok {
		return nil, fmt.Errorf("unknown content kind: %s", kind)
	}
	if modelID == "" {
		modelID = defaultTextModel
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	metered := kind == model.ContentKindBlog
	quota := QuotaFor(user.APIQuota, modelID)
	if metered {
		usage := UsageFor(user.APIUsage, modelID)
		if !Admit(usage, quota) {
			return nil, &QuotaExceededError{Model: modelID, Usage: usage, Quota: quota}
		}
	}

	content, err := s.textGen.GenerateText(ctx, fmt.Sprintf(template, topic))
	if err != nil {
		return nil, err
	}

	result := &TextResult{Content: content, Quota: quota, Metered: metered}
	if metered {
		newUsage, admitted, err := s.userRepo.IncrementUsage(ctx, userID, modelID, DefaultQuota)
		if err != nil {
			return nil, err
		}
		if !admitted {
			s.logger.Warn().Str("user_id", userID).Str("model", modelID).
				Msg("usage increment lost the quota race after generation")
		}
		result.Usage = newUsage
	}

	s.appendRecord(ctx, &model.ContentRecord{
		UserID:  userID,
		Kind:    kind,
		Topic:   topic,
		Content: content,
	})
	return result, nil
}

// GenerateImage runs the full gated dispatch: authorize, resolve credential,
// gate on quota, call the provider, fall back once if eligible, then record
// usage and the artifact for whichever model actually produced it.
func (s *DispatchService) GenerateImage(ctx context.Context, userID, modelID string, req ImageRequest) (*ImageResult, error) {
	provider, err := s.registry.Resolve(modelID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !user.ModelEnabled(modelID) {
		return nil, &ModelNotEnabledError{Model: modelID, Enabled: user.EnabledModels}
	}

	apiKey, ok := user.CredentialFor(modelID)
	if !ok {
		return nil, &CredentialMissingError{
			Model:         modelID,
			AvailableKeys: keyNames(user.APIKeys),
			Instructions:  InstructionsFor(modelID),
		}
	}

	usage := UsageFor(user.APIUsage, modelID)
	quota := QuotaFor(user.APIQuota, modelID)
	if !Admit(usage, quota) {
		return nil, &QuotaExceededError{Model: modelID, Usage: usage, Quota: quota}
	}

	usedModel := modelID
	data, primaryErr := provider.GenerateImage(ctx, req, apiKey)
	if primaryErr != nil {
		fallbackKey, eligible := s.fallbackCredential(user, modelID)
		if !eligible {
			return nil, primaryErr
		}
		s.logger.Warn().Str("user_id", userID).Str("model", modelID).Err(primaryErr).
			Msgf("primary provider failed, trying %s as fallback", imageFallbackModel)

		fallbackProvider, err := s.registry.Resolve(imageFallbackModel)
		if err != nil {
			return nil, primaryErr
		}
		data, err = fallbackProvider.GenerateImage(ctx, req, fallbackKey)
		if err != nil {
			// Both attempts failed: surface the primary's error.
			s.logger.Warn().Str("user_id", userID).Err(err).Msg("fallback provider failed too")
			return nil, primaryErr
		}
		usedModel = imageFallbackModel
	}

	newUsage, admitted, err := s.userRepo.IncrementUsage(ctx, userID, usedModel, DefaultQuota)
	if err != nil {
		return nil, err
	}
	if !admitted {
		s.logger.Warn().Str("user_id", userID).Str("model", usedModel).
			Msg("usage increment lost the quota race after generation")
	}

	s.appendRecord(ctx, &model.ContentRecord{
		UserID:    userID,
		Kind:      model.ContentKindImage,
		Topic:     req.Prompt,
		Content:   fmt.Sprintf("Generated image using %s", usedModel),
		ImageData: base64.StdEncoding.EncodeToString(data),
	})

	return &ImageResult{
		Data:           data,
		MimeType:       "image/png",
		RequestedModel: modelID,
		UsedModel:      usedModel,
		Usage:          newUsage,
		Quota:          QuotaFor(user.APIQuota, usedModel),
	}, nil
}

// fallbackCredential reports whether the request may retry on the designated
// fallback model, and with which credential.
func (s *DispatchService) fallbackCredential(user *model.User, modelID string) (string, bool) {
	if !strings.HasPrefix(modelID, nvidiaFamilyPrefix) || modelID == imageFallbackModel {
		return "", false
	}
	return user.CredentialFor(imageFallbackModel)
}

// appendRecord writes a ledger entry for an artifact that has already been
// produced. A storage failure here must not lose the artifact, so it is
// logged and swallowed.
func (s *DispatchService) appendRecord(ctx context.Context, rec *model.ContentRecord) {
	if err := s.contentRepo.Append(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("user_id", rec.UserID).Str("kind", rec.Kind).
			Msg("failed to record generated content")
	}
}

// TestNvidiaKey probes the user's NVIDIA credential for the given model and
// returns the raw provider response.
func (s *DispatchService) TestNvidiaKey(ctx context.Context, userID, modelID string) (json.RawMessage, error) {
	if modelID == "" {
		modelID = "nvidia-sdxl"
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	apiKey, ok := user.CredentialFor(modelID)
	if !ok {
		return nil, &CredentialMissingError{
			Model:         modelID,
			AvailableKeys: keyNames(user.APIKeys),
			Instructions:  InstructionsFor(modelID),
		}
	}
	return s.nvidiaProbe.VerifyKey(ctx, apiKey)
}

// ListStabilityEngines lists provider engines using the user's Stability key
// (stored as "sd3" or "stable-diffusion").
func (s *DispatchService) ListStabilityEngines(ctx context.Context, userID string) ([]Engine, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	apiKey, ok := user.CredentialFor("sd3")
	if !ok {
		apiKey, ok = user.CredentialFor("stable-diffusion")
	}
	if !ok {
		return nil, &CredentialMissingError{
			Model:         "sd3",
			AvailableKeys: keyNames(user.APIKeys),
			Instructions:  InstructionsFor("sd3"),
		}
	}
	return s.engines.ListEngines(ctx, apiKey)
}

func keyNames(keys map[string]string) []string {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	return names
}
