package model

import "time"

// User represents an account in the system. The per-model maps are stored as
// JSONB columns; credentials are keyed by exact, case-sensitive model id.
type User struct {
	ID                 string            `db:"id" json:"id"`
	Email              string            `db:"email" json:"email"`
	PasswordHash       string            `db:"password_hash" json:"-"`
	IsAdmin            bool              `db:"is_admin" json:"isAdmin"`
	StripeCustomerID   *string           `db:"stripe_customer_id" json:"stripeCustomerId,omitempty"`
	SubscriptionStatus string            `db:"subscription_status" json:"subscriptionStatus"`
	APIKeys            map[string]string `db:"api_keys" json:"apiKeys"`
	EnabledModels      []string          `db:"enabled_models" json:"enabledModels"`
	APIUsage           map[string]int    `db:"api_usage" json:"apiUsage"`
	APIQuota           map[string]int    `db:"api_quota" json:"apiQuota"`
	LinkedIn           *LinkedInLink     `db:"linkedin" json:"linkedin,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"createdAt"`
}

// LinkedInLink is the user's LinkedIn connection. A zero or expired link is
// treated as disconnected.
type LinkedInLink struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ProfileID   string    `json:"profileId"`
	ProfileName string    `json:"profileName"`
	Connected   bool      `json:"connected"`
}

// ModelEnabled reports whether the user may call the given model.
func (u *User) ModelEnabled(model string) bool {
	for _, m := range u.EnabledModels {
		if m == model {
			return true
		}
	}
	return false
}

// CredentialFor returns the user's stored API key for a model, if any.
func (u *User) CredentialFor(model string) (string, bool) {
	key, ok := u.APIKeys[model]
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
