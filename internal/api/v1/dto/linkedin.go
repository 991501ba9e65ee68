package dto

type AuthURLResponseDTO struct {
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

type CallbackResponseDTO struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Profile ProfileDTO `json:"profile"`
}

type ProfileDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LinkedInStatusResponseDTO struct {
	Connected   bool   `json:"connected"`
	ProfileName string `json:"profileName,omitempty"`
	ProfileID   string `json:"profileId,omitempty"`
}

type PostRequestDTO struct {
	Content   string `json:"content" validate:"required"`
	ImageData string `json:"imageData"`
}

type PostResponseDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	PostID  string `json:"postId"`
}
