package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"direct app error", CredentialsMissing(""), CodeCredentialsMissing},
		{"wrapped app error", fmt.Errorf("sync failed: %w", Timeout(errors.New("deadline"), "")), CodeTimeout},
		{"plain error", errors.New("boom"), CodeInternalError},
		{"nil cause", UpstreamAuth(nil, "rejected"), CodeUpstreamAuthError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	err := UpstreamRequest(errors.New("503"), "provider unavailable")

	assert.True(t, Is(err, CodeUpstreamRequestError))
	assert.False(t, Is(err, CodeTimeout))
	assert.False(t, Is(errors.New("plain"), CodeUpstreamRequestError))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence(cause, "upsert failed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), CodePersistenceError)
	assert.Contains(t, err.Error(), "connection reset")
}
