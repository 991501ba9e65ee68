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

const nvidiaSDXLEndpoint = "https://ai.api.nvidia.com/v1/genai/stabilityai/stable-diffusion-xl"

// NvidiaProvider generates images through NVIDIA's hosted Stable Diffusion XL.
type NvidiaProvider struct {
	client  *http.Client
	baseURL string
}

func NewNvidiaProvider() *NvidiaProvider {
	return &NvidiaProvider{
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: nvidiaSDXLEndpoint,
	}
}

func (p *NvidiaProvider) Name() string { return "NVIDIA" }

type nvidiaTextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type nvidiaRequest struct {
	TextPrompts []nvidiaTextPrompt `json:"text_prompts"`
	CfgScale    float64            `json:"cfg_scale"`
	Sampler     string             `json:"sampler"`
	Seed        int                `json:"seed"`
	Steps       int                `json:"steps"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
}

type nvidiaResponse struct {
	Artifacts []struct {
		Base64 string `json:"base64"`
	} `json:"artifacts"`
}

func (p *NvidiaProvider) GenerateImage(ctx context.Context, req ImageRequest, apiKey string) ([]byte, error) {
	body := nvidiaRequest{
		TextPrompts: []nvidiaTextPrompt{{Text: req.Prompt, Weight: 1}},
		CfgScale:    7.5,
		Sampler:     "K_DPM_2_ANCESTRAL",
		Seed:        0,
		Steps:       25,
		Width:       req.Width(),
		Height:      req.Height(),
	}
	if req.NegativePrompt != "" {
		body.TextPrompts = append(body.TextPrompts, nvidiaTextPrompt{Text: req.NegativePrompt, Weight: -1})
	}
	raw, err := p.call(ctx, body, apiKey)
	if err != nil {
		return nil, err
	}

	var result nvidiaResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Artifacts) == 0 || result.Artifacts[0].Base64 == "" {
		return nil, &ProviderError{Provider: p.Name(), Model: "nvidia-sdxl", Kind: ProviderErrGeneric,
			Err: fmt.Errorf("no image artifact in response")}
	}
	img, err := base64.StdEncoding.DecodeString(result.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image artifact: %w", err)
	}
	return img, nil
}

// VerifyKey probes the endpoint with a minimal low-step request and returns
// the raw provider response on success.
func (p *NvidiaProvider) VerifyKey(ctx context.Context, apiKey string) (json.RawMessage, error) {
	body := nvidiaRequest{
		TextPrompts: []nvidiaTextPrompt{{Text: "a simple red circle", Weight: 1}},
		CfgScale:    7.5,
		Sampler:     "K_DPM_2_ANCESTRAL",
		Seed:        12345,
		Steps:       5,
		Width:       512,
		Height:      512,
	}
	return p.call(ctx, body, apiKey)
}

func (p *NvidiaProvider) call(ctx context.Context, body nvidiaRequest, apiKey string) (json.RawMessage, error) {
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Model: "nvidia-sdxl", Kind: ProviderErrGeneric, Err: err}
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
			Model:    "nvidia-sdxl",
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Body:     string(respBody),
			Err:      fmt.Errorf("request failed with status %d", resp.StatusCode),
		}
	}
	return respBody, nil
}
