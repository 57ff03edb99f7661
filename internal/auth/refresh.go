package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/fish0048-ai/my-ai-coach/internal/store"
)

// refreshBuffer is how early a token is refreshed before it expires.
const refreshBuffer = 60 * time.Second

// TokenSource wraps oauth2.TokenSource with persistence
// It automatically refreshes tokens and calls onRefresh when a new token is obtained
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource creates a new TokenSource that will refresh tokens as needed
// and call onRefresh to persist new tokens
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	// Force a refresh: the oauth2 package would otherwise reuse a token
	// that is still valid but inside our buffer.
	stale := *ts.token
	stale.Expiry = time.Now().Add(-time.Second)
	newToken, err := ts.config.TokenSource(context.Background(), &stale).Token()
	if err != nil {
		return nil, err
	}
	log.Debug("auth: refreshed strava access token")

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}

// IsExpired checks if the current token is expired or will expire within the buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return time.Until(ts.token.Expiry) <= refreshBuffer
}

// CurrentToken returns the current token without refreshing
func (ts *TokenSource) CurrentToken() *oauth2.Token {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}

// Platform is the store key Strava logins are saved under.
const Platform = "strava"

// FromStore builds a TokenSource from the stored Strava login and persists
// every refresh back to st. It returns store.ErrNoAuth when nobody has
// logged in.
func FromStore(ctx context.Context, cfg *oauth2.Config, st *store.Store) (*TokenSource, error) {
	creds, err := st.GetCredentials(ctx, Platform)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiresAt,
	}
	return NewTokenSource(cfg, token, func(newToken *oauth2.Token) error {
		// Refreshes happen inside API calls, after the loading context is gone.
		return st.UpdateTokens(context.Background(), Platform, newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	}), nil
}

// Save stores the tokens of a completed login.
func Save(ctx context.Context, st *store.Store, result *AuthResult) error {
	if result == nil || result.Token == nil {
		return errors.New("no token to save")
	}
	err := st.SaveCredentials(ctx, &store.Credentials{
		Platform:     Platform,
		AccountID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	})
	if err != nil {
		return fmt.Errorf("saving strava login: %w", err)
	}
	return nil
}
