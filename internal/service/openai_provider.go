package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openaiBaseURL = "https://api.openai.com/v1"

// OpenAIProvider generates images with DALL-E 3.
type OpenAIProvider struct {
	client  *http.Client
	baseURL string
}

func NewOpenAIProvider() *OpenAIProvider {
	return &OpenAIProvider{
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: openaiBaseURL,
	}
}

func (p *OpenAIProvider) Name() string { return "OpenAI" }

func (p *OpenAIProvider) GenerateImage(ctx context.Context, req ImageRequest, apiKey string) ([]byte, error) {
	body := map[string]interface{}{
		"model":           "dall-e-3",
		"prompt":          req.Prompt,
		"n":               1,
		"size":            fmt.Sprintf("%dx%d", req.Width(), req.Height()),
		"quality":         "standard",
		"response_format": "url",
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/images/generations", bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Model: "dall-e-3", Kind: ProviderErrGeneric, Err: err}
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
			Model:    "dall-e-3",
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Body:     string(respBody),
			Err:      fmt.Errorf("image generation failed with status %d", resp.StatusCode),
		}
	}

	var result struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return nil, &ProviderError{Provider: p.Name(), Model: "dall-e-3", Kind: ProviderErrGeneric,
			Err: fmt.Errorf("no image URL in response")}
	}

	return p.download(ctx, result.Data[0].URL)
}

// download fetches the generated image from the short-lived URL OpenAI returns.
func (p *OpenAIProvider) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Model: "dall-e-3", Kind: ProviderErrGeneric, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Model: "dall-e-3", Kind: ProviderErrGeneric,
			Status: resp.StatusCode, Err: fmt.Errorf("image download failed with status %d", resp.StatusCode)}
	}
	return io.ReadAll(resp.Body)
}
