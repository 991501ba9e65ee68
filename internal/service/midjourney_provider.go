package service

import (
	"context"
	"errors"
)

// MidjourneyProvider is registered so the model id resolves, but the upstream
// API has no official integration. Every call fails loudly rather than
// silently producing nothing.
type MidjourneyProvider struct{}

func NewMidjourneyProvider() *MidjourneyProvider { return &MidjourneyProvider{} }

func (p *MidjourneyProvider) Name() string { return "Midjourney" }

func (p *MidjourneyProvider) GenerateImage(ctx context.Context, req ImageRequest, apiKey string) ([]byte, error) {
	return nil, &ProviderError{
		Provider: p.Name(),
		Model:    "midjourney",
		Kind:     ProviderErrNotImplemented,
		Err:      errors.New("Midjourney API not implemented yet"),
	}
}
