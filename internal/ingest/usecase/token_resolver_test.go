package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestResolver(tokenURL string) *TokenResolver {
	r := NewTokenResolver("client-id", "client-secret", 2*time.Second)
	r.config.Endpoint = oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}
	return r
}

func TestResolve_CachedTokenStillValid(t *testing.T) {
	r := newTestResolver("http://127.0.0.1:1/token")
	creds := domain.Credentials{
		RefreshToken: "refresh",
		AccessToken:  "cached",
		Expiry:       time.Now().Add(10 * time.Minute),
	}

	resolved, refreshed, err := r.Resolve(context.Background(), creds)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, "cached", resolved.AccessToken)
}

func TestResolve_SkewForcesRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	r := newTestResolver(srv.URL)
	creds := domain.Credentials{
		RefreshToken: "refresh",
		AccessToken:  "stale",
		// Inside the 60s skew window: treated as expired.
		Expiry: time.Now().Add(30 * time.Second),
	}

	resolved, refreshed, err := r.Resolve(context.Background(), creds)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, "fresh", resolved.AccessToken)
	// Endpoint omitted the refresh token; the stored one is kept.
	assert.Equal(t, "refresh", resolved.RefreshToken)
}

func TestResolve_NoRefreshToken(t *testing.T) {
	r := newTestResolver("http://127.0.0.1:1/token")
	_, refreshed, err := r.Resolve(context.Background(), domain.Credentials{AccessToken: "expired"})
	assert.False(t, refreshed)
	assert.True(t, apperr.Is(err, apperr.CodeCredentialsMissing))
}

func TestResolve_EndpointRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	r := newTestResolver(srv.URL)
	_, _, err := r.Resolve(context.Background(), domain.Credentials{RefreshToken: "revoked"})
	assert.True(t, apperr.Is(err, apperr.CodeUpstreamAuthError), "got %v", err)
}

func TestResolve_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	r := newTestResolver(srv.URL)
	r.timeout = 50 * time.Millisecond

	_, _, err := r.Resolve(context.Background(), domain.Credentials{RefreshToken: "refresh"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeTimeout), "got %v", err)
}
