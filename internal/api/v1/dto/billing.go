package dto

type CheckoutSessionResponseDTO struct {
	URL string `json:"url"`
}
