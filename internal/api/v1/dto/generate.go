package dto

type GenerateTextRequestDTO struct {
	Topic string `json:"topic" validate:"required"`
	Model string `json:"model"`
}

type GenerateTextResponseDTO struct {
	Content string `json:"content"`
	Usage   *int   `json:"usage,omitempty"`
	Quota   *int   `json:"quota,omitempty"`
}
