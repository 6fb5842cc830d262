package usecase

import (
	"context"
	"errors"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/apperr"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const tokenValiditySkew = 60 * time.Second

// TokenResolver exchanges a stored refresh token for a usable access token.
type TokenResolver struct {
	config  *oauth2.Config
	timeout time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewTokenResolver(clientID, clientSecret string, timeout time.Duration) *TokenResolver {
	return &TokenResolver{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
		},
		timeout: timeout,
		now:     time.Now,
	}
}

// Resolve returns credentials with a valid access token. When the cached
// token still has more than the skew remaining it is returned unchanged;
// otherwise a refresh-token exchange runs under the configured timeout.
// The second return reports whether the caller must persist new credentials.
func (r *TokenResolver) Resolve(ctx context.Context, creds domain.Credentials) (domain.Credentials, bool, error) {
	if creds.AccessToken != "" && !creds.Expiry.IsZero() &&
		creds.Expiry.After(r.now().Add(tokenValiditySkew)) {
		return creds, false, nil
	}

	if creds.RefreshToken == "" {
		return creds, false, apperr.CredentialsMissing("no refresh token stored for this account")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	token := &oauth2.Token{
		RefreshToken: creds.RefreshToken,
	}
	fresh, err := r.config.TokenSource(ctx, token).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return creds, false, apperr.UpstreamAuth(err, "token refresh rejected")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return creds, false, apperr.Timeout(err, "token refresh timed out")
		}
		return creds, false, apperr.UpstreamRequest(err, "token refresh failed")
	}

	refreshed := domain.Credentials{
		RefreshToken: fresh.RefreshToken,
		AccessToken:  fresh.AccessToken,
		Expiry:       fresh.Expiry,
		Scope:        creds.Scope,
	}
	// The endpoint may omit the refresh token on renewal; keep the old one.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = creds.RefreshToken
	}
	return refreshed, true, nil
}
