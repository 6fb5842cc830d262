package usecase

import (
	"testing"

	"jobtrack-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUsecase() AuthUsecase {
	return NewAuthUsecase(&config.Config{
		JWTSecret:  "test-secret",
		AdminToken: "admin-123",
	})
}

func TestIssueAndValidateToken(t *testing.T) {
	u := testUsecase()

	resp, err := u.IssueToken("admin-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)

	subject, err := u.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "operator", subject)
}

func TestIssueToken_WrongAdminToken(t *testing.T) {
	u := testUsecase()
	_, err := u.IssueToken("wrong")
	assert.Error(t, err)
}

func TestIssueToken_Unconfigured(t *testing.T) {
	u := NewAuthUsecase(&config.Config{JWTSecret: "test-secret"})
	_, err := u.IssueToken("")
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	u := testUsecase()
	_, err := u.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := testUsecase()
	resp, err := issuer.IssueToken("admin-123")
	require.NoError(t, err)

	verifier := NewAuthUsecase(&config.Config{JWTSecret: "other-secret", AdminToken: "admin-123"})
	_, err = verifier.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}
