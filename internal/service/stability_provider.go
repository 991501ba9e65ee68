package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const stabilityBaseURL = "https://api.stability.ai"

// Engines Stability exposes for SD3-class generation.
const stabilityDefaultEngine = "stable-diffusion-v1-6"

// StabilityProvider generates images through the Stability AI REST API.
type StabilityProvider struct {
	client  *http.Client
	baseURL string
	engine  string
}

func NewStabilityProvider() *StabilityProvider {
	return &StabilityProvider{
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: stabilityBaseURL,
		engine:  stabilityDefaultEngine,
	}
}

func (p *StabilityProvider) Name() string { return "Stability AI" }

func (p *StabilityProvider) GenerateImage(ctx context.Context, req ImageRequest, apiKey string) ([]byte, error) {
	body := map[string]interface{}{
		"text_prompts": []map[string]interface{}{
			{"text": req.Prompt, "weight": 1},
		},
		"cfg_scale": 7,
		"height":    req.Height(),
		"width":     req.Width(),
		"samples":   1,
		"steps":     30,
	}
	if req.NegativePrompt != "" {
		body["text_prompts"] = append(body["text_prompts"].([]map[string]interface{}),
			map[string]interface{}{"text": req.NegativePrompt, "weight": -1})
	}
	if req.Style != "" {
		body["style_preset"] = req.Style
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/v1/generation/%s/text-to-image", p.baseURL, p.engine)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Model: "sd3", Kind: ProviderErrGeneric, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: p.Name(),
			Model:    "sd3",
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Body:     string(respBody),
			Err:      fmt.Errorf("image generation failed with status %d", resp.StatusCode),
		}
	}

	var result struct {
		Artifacts []struct {
			Base64 string `json:"base64"`
		} `json:"artifacts"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Artifacts) == 0 || result.Artifacts[0].Base64 == "" {
		return nil, &ProviderError{Provider: p.Name(), Model: "sd3", Kind: ProviderErrGeneric,
			Err: fmt.Errorf("no image artifact in response")}
	}
	img, err := base64.StdEncoding.DecodeString(result.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image artifact: %w", err)
	}
	return img, nil
}

// Engine describes one entry of the provider's engine list.
type Engine struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// ListEngines returns the engines available to the given API key.
func (p *StabilityProvider) ListEngines(ctx context.Context, apiKey string) ([]Engine, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/engines/list", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: ProviderErrGeneric, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: p.Name(),
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Body:     string(respBody),
			Err:      fmt.Errorf("engine list failed with status %d", resp.StatusCode),
		}
	}

	var engines []Engine
	if err := json.Unmarshal(respBody, &engines); err != nil {
		return nil, fmt.Errorf("failed to decode engine list: %w", err)
	}
	return engines, nil
}
