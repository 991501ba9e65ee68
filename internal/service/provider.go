package service

import (
	"context"
	"strconv"
	"strings"
)

// ImageRequest carries the generation parameters common to all providers.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	Size           string // "WIDTHxHEIGHT", e.g. "1024x1024"
	Style          string
}

// Width and Height parse the request size, defaulting to 1024x1024.
func (r ImageRequest) Width() int  { w, _ := parseSize(r.Size); return w }
func (r ImageRequest) Height() int { _, h := parseSize(r.Size); return h }

func parseSize(size string) (int, int) {
	parts := strings.SplitN(size, "x", 2)
	if len(parts) != 2 {
		return 1024, 1024
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 1024, 1024
	}
	return w, h
}

// ImageProvider produces image bytes for a prompt using the given credential.
type ImageProvider interface {
	Name() string
	GenerateImage(ctx context.Context, req ImageRequest, apiKey string) ([]byte, error)
}

// ProviderRegistry maps model ids to provider adapters. It is built once at
// startup; unknown ids are rejected here, before any user or credential work.
type ProviderRegistry struct {
	providers map[string]ImageProvider
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: map[string]ImageProvider{}}
}

func (r *ProviderRegistry) Register(modelID string, p ImageProvider) {
	r.providers[modelID] = p
}

// Resolve returns the provider bound to a model id, matched exactly and
// case-sensitively.
func (r *ProviderRegistry) Resolve(modelID string) (ImageProvider, error) {
	p, ok := r.providers[modelID]
	if !ok {
		return nil, &UnsupportedModelError{Model: modelID}
	}
	return p, nil
}

// SetupInstructions tell a user how to obtain a credential for a model family.
type SetupInstructions struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
	Note  string   `json:"note"`
}

var setupInstructions = map[string]SetupInstructions{
	"nvidia-sdxl": {
		Title: "NVIDIA NGC API Key Setup",
		Steps: []string{
			"1. Go to https://ngc.nvidia.com/",
			"2. Sign up or log in to your NVIDIA account",
			"3. Navigate to \"Setup\" → \"API Key\"",
			"4. Generate a new API key",
			"5. Copy the key and paste it in the admin panel",
			"6. Ensure you have access to Stable Diffusion XL model",
		},
		Note: "NVIDIA NGC account is required for accessing their models.",
	},
	"dall-e-3": {
		Title: "OpenAI API Key Setup",
		Steps: []string{
			"1. Go to https://platform.openai.com/",
			"2. Sign up or log in to your OpenAI account",
			"3. Navigate to \"API Keys\" section",
			"4. Create a new API key",
			"5. Copy the key and paste it in the admin panel",
			"6. Ensure you have billing set up for image generation",
		},
		Note: "OpenAI requires billing information for image generation.",
	},
	"sd3": {
		Title: "Stability AI API Key Setup",
		Steps: []string{
			"1. Go to https://platform.stability.ai/",
			"2. Sign up or log in to your Stability AI account",
			"3. Navigate to \"Account\" → \"API Keys\"",
			"4. Generate a new API key",
			"5. Copy the key and paste it in the admin panel",
		},
		Note: "Stability AI offers free credits for new users.",
	},
}

// InstructionsFor returns setup steps for a model's provider family.
func InstructionsFor(model string) SetupInstructions {
	if ins, ok := setupInstructions[model]; ok {
		return ins
	}
	return SetupInstructions{
		Title: "API Key Setup",
		Steps: []string{"Please check the provider's documentation for API key setup instructions."},
		Note:  "API keys are required for image generation services.",
	}
}
