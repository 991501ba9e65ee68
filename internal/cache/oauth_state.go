package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// oauthStatePrefix is the Redis key prefix for OAuth anti-forgery states.
	oauthStatePrefix = "oauth:state:"
	// oauthStateTTL bounds how long an authorization redirect may stay pending.
	oauthStateTTL = 10 * time.Minute
)

// OAuthStateStore stores and consumes single-use OAuth state nonces.
type OAuthStateStore interface {
	SaveOAuthState(ctx context.Context, userID, state string) error
	// ConsumeOAuthState reports whether the state was issued to this user and
	// deletes it, so a state can only be redeemed once.
	ConsumeOAuthState(ctx context.Context, userID, state string) (bool, error)
}

func oauthStateKey(userID, state string) string {
	return oauthStatePrefix + userID + ":" + state
}

func (c *Cache) SaveOAuthState(ctx context.Context, userID, state string) error {
	if err := c.client.Set(ctx, oauthStateKey(userID, state), "1", oauthStateTTL).Err(); err != nil {
		return fmt.Errorf("saving oauth state: %w", err)
	}
	return nil
}

func (c *Cache) ConsumeOAuthState(ctx context.Context, userID, state string) (bool, error) {
	err := c.client.GetDel(ctx, oauthStateKey(userID, state)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consuming oauth state: %w", err)
	}
	return true, nil
}
