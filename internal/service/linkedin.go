package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"app/internal/cache"
	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	linkedInAuthURL    = "https://www.linkedin.com/oauth/v2/authorization"
	linkedInTokenURL   = "https://www.linkedin.com/oauth/v2/accessToken"
	linkedInAPIBaseURL = "https://api.linkedin.com"
	linkedInScope      = "w_member_social r_liteprofile r_emailaddress"
)

// LinkedInService owns the OAuth lifecycle and posting for a user's LinkedIn
// connection. The link moves Disconnected -> Connecting -> Connected and is
// lazily invalidated whenever an expired token is observed.
type LinkedInService struct {
	userRepo    repository.UserRepository
	contentRepo repository.ContentRepository
	states      cache.OAuthStateStore
	client      *http.Client

	clientID     string
	clientSecret string
	redirectURI  string

	// Overridable for tests.
	authURL    string
	tokenURL   string
	apiBaseURL string

	logger zerolog.Logger
}

func NewLinkedInService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	contentRepo repository.ContentRepository,
	states cache.OAuthStateStore,
	logger zerolog.Logger,
) *LinkedInService {
	lg := logger.With().Str("service", "LinkedInService").Logger()
	return &LinkedInService{
		userRepo:     userRepo,
		contentRepo:  contentRepo,
		states:       states,
		client:       &http.Client{Timeout: 30 * time.Second},
		clientID:     cfg.LinkedInClientID,
		clientSecret: cfg.LinkedInClientSecret,
		redirectURI:  cfg.LinkedInRedirectURI,
		authURL:      linkedInAuthURL,
		tokenURL:     linkedInTokenURL,
		apiBaseURL:   linkedInAPIBaseURL,
		logger:       lg,
	}
}

// AuthURL issues an anti-forgery state nonce and builds the provider
// authorization URL. Nothing is persisted on the user record yet.
func (s *LinkedInService) AuthURL(ctx context.Context, userID string) (string, string, error) {
	state := uuid.NewString()
	if err := s.states.SaveOAuthState(ctx, userID, state); err != nil {
		return "", "", err
	}
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.clientID)
	q.Set("redirect_uri", s.redirectURI)
	q.Set("scope", linkedInScope)
	q.Set("state", state)
	return s.authURL + "?" + q.Encode(), state, nil
}

// Profile is the subset of the LinkedIn member profile this service keeps.
type Profile struct {
	ID   string
	Name string
}

// Exchange redeems the authorization code for an access token, fetches the
// member profile, and persists the connected link. On any failure the user
// remains disconnected.
func (s *LinkedInService) Exchange(ctx context.Context, userID, code, state string) (*Profile, error) {
	ok, err := s.states.ConsumeOAuthState(ctx, userID, state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOAuthStateMismatch
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.redirectURI)
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &OAuthExchangeError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &OAuthExchangeError{Err: err}
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, &OAuthExchangeError{Err: readErr}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &OAuthExchangeError{Body: string(body),
			Err: fmt.Errorf("token exchange failed with status %d", resp.StatusCode)}
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &OAuthExchangeError{Body: string(body), Err: err}
	}
	if token.AccessToken == "" {
		return nil, &OAuthExchangeError{Body: string(body), Err: fmt.Errorf("no access token in response")}
	}

	profile, err := s.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	link := &model.LinkedInLink{
		AccessToken: token.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		ProfileID:   profile.ID,
		ProfileName: profile.Name,
		Connected:   true,
	}
	if err := s.userRepo.SetLinkedIn(ctx, userID, link); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *LinkedInService) fetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBaseURL+"/v2/me", nil)
	if err != nil {
		return nil, &OAuthExchangeError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &OAuthExchangeError{Err: err}
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, &OAuthExchangeError{Err: readErr}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &OAuthExchangeError{Body: string(body),
			Err: fmt.Errorf("profile fetch failed with status %d", resp.StatusCode)}
	}

	var me struct {
		ID        string `json:"id"`
		FirstName string `json:"localizedFirstName"`
		LastName  string `json:"localizedLastName"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, &OAuthExchangeError{Body: string(body), Err: err}
	}
	return &Profile{ID: me.ID, Name: me.FirstName + " " + me.LastName}, nil
}

// Status reports whether the user is connected. An expired token is cleared
// on this same call, so the caller sees connected=false without a separate
// disconnect.
type Status struct {
	Connected   bool
	ProfileID   string
	ProfileName string
}

func (s *LinkedInService) Status(ctx context.Context, userID string) (*Status, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	link := user.LinkedIn
	if link == nil || !link.Connected {
		return &Status{Connected: false}, nil
	}
	if s.expired(link) {
		if err := s.userRepo.ClearLinkedIn(ctx, userID); err != nil {
			return nil, err
		}
		return &Status{Connected: false, ProfileName: link.ProfileName, ProfileID: link.ProfileID}, nil
	}
	return &Status{Connected: true, ProfileID: link.ProfileID, ProfileName: link.ProfileName}, nil
}

// Disconnect clears all LinkedIn sub-fields.
func (s *LinkedInService) Disconnect(ctx context.Context, userID string) error {
	return s.userRepo.ClearLinkedIn(ctx, userID)
}

func (s *LinkedInService) expired(link *model.LinkedInLink) bool {
	return !link.ExpiresAt.IsZero() && time.Now().After(link.ExpiresAt)
}

// Post publishes content to LinkedIn, with an optional base64 image. The
// upload steps run first; any failure aborts the whole post and nothing is
// recorded as successful.
func (s *LinkedInService) Post(ctx context.Context, userID, content, imageData string) (string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	link := user.LinkedIn
	if link == nil || !link.Connected || link.AccessToken == "" {
		return "", ErrLinkedInNotConnected
	}
	if s.expired(link) {
		return "", ErrLinkedInTokenExpired
	}

	share := map[string]interface{}{
		"shareCommentary":    map[string]string{"text": content},
		"shareMediaCategory": "NONE",
	}
	if imageData != "" {
		asset, err := s.uploadImage(ctx, link, imageData)
		if err != nil {
			return "", err
		}
		share["shareMediaCategory"] = "IMAGE"
		share["media"] = []map[string]interface{}{{
			"status":      "READY",
			"description": map[string]string{"text": "Generated image"},
			"media":       asset,
			"title":       map[string]string{"text": "Generated content"},
		}}
	}

	postData := map[string]interface{}{
		"author":         "urn:li:person:" + link.ProfileID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": share,
		},
		"visibility": map[string]interface{}{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, status, err := s.apiPost(ctx, link.AccessToken, "/v2/ugcPosts", postData)
	if err != nil {
		return "", &PostError{Err: err}
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", &PostError{Body: string(body), Err: fmt.Errorf("post creation failed with status %d", status)}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", &PostError{Body: string(body), Err: err}
	}

	topic := content
	if runes := []rune(topic); len(runes) > 100 {
		// Truncate on a rune boundary so non-ASCII content stays valid UTF-8.
		topic = string(runes[:100]) + "..."
	}
	rec := &model.ContentRecord{
		UserID:         userID,
		Kind:           model.ContentKindLinkedInPost,
		Topic:          topic,
		Content:        content,
		LinkedInPostID: created.ID,
	}
	if err := s.contentRepo.Append(ctx, rec); err != nil {
		// The post is already live; losing the ledger entry must not turn a
		// published post into a reported failure.
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record linkedin post")
	}
	return created.ID, nil
}

// uploadImage registers an upload target, pushes the binary, and returns the
// asset URN to reference from the post.
func (s *LinkedInService) uploadImage(ctx context.Context, link *model.LinkedInLink, imageData string) (string, error) {
	registerReq := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   "urn:li:person:" + link.ProfileID,
			"serviceRelationships": []map[string]string{{
				"relationshipType": "OWNER",
				"identifier":       "urn:li:userGeneratedContent",
			}},
		},
	}
	body, status, err := s.apiPost(ctx, link.AccessToken, "/v2/assets?action=registerUpload", registerReq)
	if err != nil {
		return "", &PostError{Err: err}
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", &PostError{Body: string(body), Err: fmt.Errorf("upload registration failed with status %d", status)}
	}

	var registered struct {
		Value struct {
			UploadURL string `json:"uploadUrl"`
			Asset     string `json:"asset"`
			// LinkedIn nests the upload URL under the upload mechanism in
			// some API versions; accept either shape.
			UploadMechanism map[string]struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	if err := json.Unmarshal(body, &registered); err != nil {
		return "", &PostError{Body: string(body), Err: err}
	}
	uploadURL := registered.Value.UploadURL
	if uploadURL == "" {
		for _, m := range registered.Value.UploadMechanism {
			if m.UploadURL != "" {
				uploadURL = m.UploadURL
				break
			}
		}
	}
	if uploadURL == "" || registered.Value.Asset == "" {
		return "", &PostError{Body: string(body), Err: fmt.Errorf("no upload target in registration response")}
	}

	raw, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return "", &PostError{Err: fmt.Errorf("invalid image data: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(raw))
	if err != nil {
		return "", &PostError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+link.AccessToken)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &PostError{Err: err}
	}
	respBody, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", &PostError{Body: string(respBody), Err: fmt.Errorf("image upload failed with status %d", resp.StatusCode)}
	}
	return registered.Value.Asset, nil
}

func (s *LinkedInService) apiPost(ctx context.Context, accessToken, path string, payload interface{}) ([]byte, int, error) {
	bodyJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBaseURL+path, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp.StatusCode, readErr
	}
	return body, resp.StatusCode, nil
}
