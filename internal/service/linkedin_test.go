package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"app/internal/config"
	"app/internal/model"

	"github.com/rs/zerolog"
)

// fakeStateStore records saved states and consumes each one at most once.
type fakeStateStore struct {
	saved map[string]string
}

func (f *fakeStateStore) SaveOAuthState(ctx context.Context, userID, state string) error {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[userID] = state
	return nil
}

func (f *fakeStateStore) ConsumeOAuthState(ctx context.Context, userID, state string) (bool, error) {
	if f.saved[userID] == state && state != "" {
		delete(f.saved, userID)
		return true, nil
	}
	return false, nil
}

func newTestLinkedIn(userRepo *fakeUserRepo, contentRepo *fakeContentRepo, states *fakeStateStore) *LinkedInService {
	cfg := &config.Config{
		LinkedInClientID:     "client-id",
		LinkedInClientSecret: "client-secret",
		LinkedInRedirectURI:  "http://localhost:3000/callback",
	}
	return NewLinkedInService(cfg, userRepo, contentRepo, states, zerolog.Nop())
}

func TestAuthURLIncludesStateAndClientID(t *testing.T) {
	states := &fakeStateStore{}
	svc := newTestLinkedIn(&fakeUserRepo{user: testUser()}, &fakeContentRepo{}, states)

	authURL, state, err := svc.AuthURL(context.Background(), "u1")
	if err != nil {
		t.Fatalf("AuthURL failed: %v", err)
	}
	if state == "" {
		t.Fatal("expected a non-empty state")
	}
	if states.saved["u1"] != state {
		t.Fatal("expected state to be stored for the user")
	}
	if !strings.Contains(authURL, "client_id=client-id") || !strings.Contains(authURL, "state="+state) {
		t.Fatalf("auth URL missing expected parameters: %s", authURL)
	}
	if strings.Contains(authURL, "client-secret") {
		t.Fatal("client secret must not appear in the auth URL")
	}
}

func TestExchangeRejectsUnknownState(t *testing.T) {
	svc := newTestLinkedIn(&fakeUserRepo{user: testUser()}, &fakeContentRepo{}, &fakeStateStore{})

	_, err := svc.Exchange(context.Background(), "u1", "code", "never-issued")
	if !errors.Is(err, ErrOAuthStateMismatch) {
		t.Fatalf("expected ErrOAuthStateMismatch, got %v", err)
	}
}

func TestExchangeConnectsUser(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("bad token request: %v", err)
		}
		if r.FormValue("grant_type") != "authorization_code" || r.FormValue("code") != "the-code" {
			t.Fatalf("unexpected token request form: %v", r.Form)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token-123",
			"expires_in":   3600,
		})
	}))
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/me" {
			t.Fatalf("unexpected API path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Fatalf("unexpected Authorization header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":                 "prof-1",
			"localizedFirstName": "Ada",
			"localizedLastName":  "Lovelace",
		})
	}))
	defer apiSrv.Close()

	userRepo := &fakeUserRepo{user: testUser()}
	states := &fakeStateStore{}
	svc := newTestLinkedIn(userRepo, &fakeContentRepo{}, states)
	svc.tokenURL = tokenSrv.URL
	svc.apiBaseURL = apiSrv.URL

	_, state, err := svc.AuthURL(context.Background(), "u1")
	if err != nil {
		t.Fatalf("AuthURL failed: %v", err)
	}

	profile, err := svc.Exchange(context.Background(), "u1", "the-code", state)
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if profile.ID != "prof-1" || profile.Name != "Ada Lovelace" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	link := userRepo.user.LinkedIn
	if link == nil || !link.Connected || link.AccessToken != "token-123" {
		t.Fatalf("expected a connected link, got %+v", link)
	}
	if link.ExpiresAt.Before(time.Now().Add(50 * time.Minute)) {
		t.Fatalf("expected expiry roughly an hour out, got %v", link.ExpiresAt)
	}

	// The state is single-use.
	if _, err := svc.Exchange(context.Background(), "u1", "the-code", state); !errors.Is(err, ErrOAuthStateMismatch) {
		t.Fatalf("expected replayed state to be rejected, got %v", err)
	}
}

func TestExchangeFailureLeavesUserDisconnected(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	userRepo := &fakeUserRepo{user: testUser()}
	states := &fakeStateStore{}
	svc := newTestLinkedIn(userRepo, &fakeContentRepo{}, states)
	svc.tokenURL = tokenSrv.URL

	_, state, err := svc.AuthURL(context.Background(), "u1")
	if err != nil {
		t.Fatalf("AuthURL failed: %v", err)
	}
	_, err = svc.Exchange(context.Background(), "u1", "bad-code", state)
	var oe *OAuthExchangeError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OAuthExchangeError, got %v", err)
	}
	if userRepo.user.LinkedIn != nil {
		t.Fatal("expected user to remain disconnected after a failed exchange")
	}
}

func TestStatusClearsExpiredToken(t *testing.T) {
	user := testUser()
	user.LinkedIn = &model.LinkedInLink{
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Hour),
		ProfileID:   "prof-1",
		ProfileName: "Ada Lovelace",
		Connected:   true,
	}
	userRepo := &fakeUserRepo{user: user}
	svc := newTestLinkedIn(userRepo, &fakeContentRepo{}, &fakeStateStore{})

	status, err := svc.Status(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Connected {
		t.Fatal("expected expired link to report disconnected")
	}
	if userRepo.user.LinkedIn != nil {
		t.Fatal("expected expired link to be cleared on the same status call")
	}
}

func TestStatusConnected(t *testing.T) {
	user := testUser()
	user.LinkedIn = &model.LinkedInLink{
		AccessToken: "token-123",
		ExpiresAt:   time.Now().Add(time.Hour),
		ProfileID:   "prof-1",
		ProfileName: "Ada Lovelace",
		Connected:   true,
	}
	svc := newTestLinkedIn(&fakeUserRepo{user: user}, &fakeContentRepo{}, &fakeStateStore{})

	status, err := svc.Status(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.Connected || status.ProfileName != "Ada Lovelace" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestPostRequiresConnection(t *testing.T) {
	svc := newTestLinkedIn(&fakeUserRepo{user: testUser()}, &fakeContentRepo{}, &fakeStateStore{})

	_, err := svc.Post(context.Background(), "u1", "hello", "")
	if !errors.Is(err, ErrLinkedInNotConnected) {
		t.Fatalf("expected ErrLinkedInNotConnected, got %v", err)
	}
}

func TestPostRejectsExpiredToken(t *testing.T) {
	user := testUser()
	user.LinkedIn = &model.LinkedInLink{
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Minute),
		Connected:   true,
	}
	svc := newTestLinkedIn(&fakeUserRepo{user: user}, &fakeContentRepo{}, &fakeStateStore{})

	_, err := svc.Post(context.Background(), "u1", "hello", "")
	if !errors.Is(err, ErrLinkedInTokenExpired) {
		t.Fatalf("expected ErrLinkedInTokenExpired, got %v", err)
	}
}

func TestPostPublishesAndRecords(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/ugcPosts" {
			t.Fatalf("unexpected API path %s", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("bad post payload: %v", err)
		}
		if payload["author"] != "urn:li:person:prof-1" {
			t.Fatalf("unexpected author: %v", payload["author"])
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:42"})
	}))
	defer apiSrv.Close()

	user := testUser()
	user.LinkedIn = &model.LinkedInLink{
		AccessToken: "token-123",
		ExpiresAt:   time.Now().Add(time.Hour),
		ProfileID:   "prof-1",
		Connected:   true,
	}
	contentRepo := &fakeContentRepo{}
	svc := newTestLinkedIn(&fakeUserRepo{user: user}, contentRepo, &fakeStateStore{})
	svc.apiBaseURL = apiSrv.URL

	postID, err := svc.Post(context.Background(), "u1", "hello world", "")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if postID != "urn:li:share:42" {
		t.Fatalf("unexpected post id %q", postID)
	}
	if len(contentRepo.records) != 1 {
		t.Fatalf("expected one ledger record, got %d", len(contentRepo.records))
	}
	rec := contentRepo.records[0]
	if rec.Kind != model.ContentKindLinkedInPost || rec.LinkedInPostID != "urn:li:share:42" {
		t.Fatalf("unexpected ledger record: %+v", rec)
	}
	if strings.Contains(rec.Topic, "token-123") || strings.Contains(rec.Content, "token-123") {
		t.Fatal("access token must never reach the ledger")
	}
}

func TestPostTruncatesLongTopic(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:43"})
	}))
	defer apiSrv.Close()

	user := testUser()
	user.LinkedIn = &model.LinkedInLink{
		AccessToken: "token-123",
		ExpiresAt:   time.Now().Add(time.Hour),
		ProfileID:   "prof-1",
		Connected:   true,
	}
	contentRepo := &fakeContentRepo{}
	svc := newTestLinkedIn(&fakeUserRepo{user: user}, contentRepo, &fakeStateStore{})
	svc.apiBaseURL = apiSrv.URL

	long := strings.Repeat("x", 250)
	if _, err := svc.Post(context.Background(), "u1", long, ""); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	topic := contentRepo.records[0].Topic
	if len(topic) != 103 || !strings.HasSuffix(topic, "...") {
		t.Fatalf("expected 100-char topic with ellipsis, got %d chars", len(topic))
	}
	if contentRepo.records[0].Content != long {
		t.Fatal("expected full content to be recorded")
	}
}

func TestPostTopicTruncationKeepsValidUTF8(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:44"})
	}))
	defer apiSrv.Close()

	user := testUser()
	user.LinkedIn = &model.LinkedInLink{
		AccessToken: "token-123",
		ExpiresAt:   time.Now().Add(time.Hour),
		ProfileID:   "prof-1",
		Connected:   true,
	}
	contentRepo := &fakeContentRepo{}
	svc := newTestLinkedIn(&fakeUserRepo{user: user}, contentRepo, &fakeStateStore{})
	svc.apiBaseURL = apiSrv.URL

	long := strings.Repeat("é", 150)
	if _, err := svc.Post(context.Background(), "u1", long, ""); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	topic := contentRepo.records[0].Topic
	if !utf8.ValidString(topic) {
		t.Fatal("expected truncated topic to remain valid UTF-8")
	}
	if got := utf8.RuneCountInString(topic); got != 103 {
		t.Fatalf("expected 100 runes plus ellipsis, got %d runes", got)
	}
	if !strings.HasPrefix(topic, strings.Repeat("é", 100)) || !strings.HasSuffix(topic, "...") {
		t.Fatalf("unexpected truncated topic: %q", topic)
	}
}
