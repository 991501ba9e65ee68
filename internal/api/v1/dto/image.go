package dto

import "encoding/json"

type GenerateImageRequestDTO struct {
	Prompt         string `json:"prompt" validate:"required"`
	NegativePrompt string `json:"negativePrompt"`
	Model          string `json:"model" validate:"required"`
	Size           string `json:"size"`
	Style          string `json:"style"`
}

type TestNvidiaKeyRequestDTO struct {
	Model string `json:"model"`
}

type TestNvidiaKeyResponseDTO struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	ResponseData json.RawMessage `json:"responseData,omitempty"`
}

type EngineDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

type ListEnginesResponseDTO struct {
	Engines []EngineDTO `json:"engines"`
}
