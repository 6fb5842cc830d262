package usecase

import (
	"crypto/subtle"
	"errors"
	"time"

	"jobtrack-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthUsecase issues and validates operator tokens. This is a single-tenant
// service: the only principal is the operator holding the admin token.
type AuthUsecase interface {
	IssueToken(adminToken string) (*TokenResponse, error)
	ValidateToken(tokenString string) (string, error)
}

type authUsecase struct {
	config *config.Config
}

func NewAuthUsecase(cfg *config.Config) AuthUsecase {
	return &authUsecase{config: cfg}
}

func (u *authUsecase) IssueToken(adminToken string) (*TokenResponse, error) {
	if u.config.AdminToken == "" {
		return nil, errors.New("admin token is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(adminToken), []byte(u.config.AdminToken)) != 1 {
		return nil, errors.New("invalid admin token")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(u.config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tokenTTL.Seconds()),
	}, nil
}

// ValidateToken returns the token subject when the signature and expiry
// check out.
func (u *authUsecase) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
