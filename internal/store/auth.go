package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Credentials are the OAuth tokens stored for one sync platform. AccountID
// is the platform's user id (the Strava athlete id), 0 when unknown.
type Credentials struct {
	Platform     string
	AccountID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the access token has expired at now.
func (c Credentials) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// GetCredentials returns the tokens stored for platform, or ErrNoAuth.
func (s *Store) GetCredentials(ctx context.Context, platform string) (*Credentials, error) {
	c := Credentials{Platform: platform}
	var expiresAt int64
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, access_token, refresh_token, expires_at, updated_at
		FROM credentials
		WHERE platform = ?
	`, platform).Scan(&c.AccountID, &c.AccessToken, &c.RefreshToken, &expiresAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for %s", ErrNoAuth, platform)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s credentials: %w", platform, err)
	}

	c.ExpiresAt = time.Unix(expiresAt, 0)
	// SQLite's CURRENT_TIMESTAMP is UTC without a zone.
	if t, err := time.Parse(time.DateTime, updatedAt); err == nil {
		c.UpdatedAt = t.UTC()
	}
	return &c, nil
}

// SaveCredentials stores c, replacing whatever was stored for its platform.
func (s *Store) SaveCredentials(ctx context.Context, c *Credentials) error {
	if c.Platform == "" {
		return errors.New("credentials without a platform")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (platform, account_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(platform) DO UPDATE SET
			account_id = excluded.account_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, c.Platform, c.AccountID, c.AccessToken, c.RefreshToken, c.ExpiresAt.Unix())
	return err
}

// UpdateTokens replaces the tokens of an existing login after a refresh.
// The account id is kept. It returns ErrNoAuth when platform has no login.
func (s *Store) UpdateTokens(ctx context.Context, platform, accessToken, refreshToken string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE credentials
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE platform = ?
	`, accessToken, refreshToken, expiresAt.Unix(), platform)
	if err != nil {
		return err
	}
	return requireRow(res, platform)
}

// DeleteCredentials forgets the login for platform. It returns ErrNoAuth
// when there was none.
func (s *Store) DeleteCredentials(ctx context.Context, platform string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE platform = ?`, platform)
	if err != nil {
		return err
	}
	return requireRow(res, platform)
}

func requireRow(res sql.Result, platform string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w for %s", ErrNoAuth, platform)
	}
	return nil
}
