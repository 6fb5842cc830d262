package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/internal/ingest/repository"
	"jobtrack-backend/pkg/apperr"
	"jobtrack-backend/pkg/crypto"
)

const googleRevokeURL = "https://oauth2.googleapis.com/revoke"

// IntegrationUsecase manages connected mail accounts and their encrypted
// credentials.
type IntegrationUsecase interface {
	Connect(provider, accountKey string, creds domain.Credentials) (*domain.Integration, error)
	Disconnect(ctx context.Context, provider, accountKey string) error
	Get(provider, accountKey string) (*domain.Integration, error)
	List() ([]*domain.Integration, error)
}

type integrationUsecase struct {
	integrations repository.IntegrationRepository
	encryptor    *crypto.Encryptor
	httpClient   *http.Client
}

func NewIntegrationUsecase(integrations repository.IntegrationRepository, encryptor *crypto.Encryptor, httpClient *http.Client) IntegrationUsecase {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &integrationUsecase{
		integrations: integrations,
		encryptor:    encryptor,
		httpClient:   httpClient,
	}
}

func (u *integrationUsecase) Connect(provider, accountKey string, creds domain.Credentials) (*domain.Integration, error) {
	if provider != domain.ProviderGmail && provider != domain.ProviderIMAP {
		return nil, apperr.New(apperr.CodeBadRequest, fmt.Sprintf("unsupported provider %q", provider))
	}
	if creds.RefreshToken == "" && creds.AccessToken == "" {
		return nil, apperr.New(apperr.CodeBadRequest, "credentials require a refresh or access token")
	}

	raw, err := json.Marshal(creds)
	if err != nil {
		return nil, apperr.Persistence(err, "credential encoding failed")
	}
	encrypted, err := u.encryptor.Encrypt(string(raw))
	if err != nil {
		return nil, apperr.Persistence(err, "credential encryption failed")
	}

	integration, err := u.integrations.Upsert(&domain.Integration{
		Provider:    provider,
		AccountKey:  accountKey,
		Credentials: encrypted,
		Status:      domain.IntegrationConnected,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Integrations] connected %s/%s", provider, accountKey)
	return integration, nil
}

// Disconnect revokes the stored token upstream when possible, then erases
// the integration. Revocation failure never blocks removal.
func (u *integrationUsecase) Disconnect(ctx context.Context, provider, accountKey string) error {
	integration, err := u.integrations.FindByAccount(provider, accountKey)
	if err != nil {
		return apperr.Persistence(err, "integration lookup failed")
	}
	if integration == nil {
		return apperr.New(apperr.CodeNotFound, fmt.Sprintf("no %s integration for %s", provider, accountKey))
	}

	if provider == domain.ProviderGmail {
		u.revokeGoogle(ctx, integration)
	}

	if err := u.integrations.Delete(integration.ID); err != nil {
		return apperr.Persistence(err, "integration delete failed")
	}
	log.Printf("[Integrations] disconnected %s/%s", provider, accountKey)
	return nil
}

func (u *integrationUsecase) Get(provider, accountKey string) (*domain.Integration, error) {
	return u.integrations.FindByAccount(provider, accountKey)
}

func (u *integrationUsecase) List() ([]*domain.Integration, error) {
	return u.integrations.FindAllConnected()
}

func (u *integrationUsecase) revokeGoogle(ctx context.Context, integration *domain.Integration) {
	plaintext, err := u.encryptor.Decrypt(integration.Credentials)
	if err != nil {
		return
	}
	var creds domain.Credentials
	if err := json.Unmarshal([]byte(plaintext), &creds); err != nil {
		return
	}
	token := creds.RefreshToken
	if token == "" {
		token = creds.AccessToken
	}
	if token == "" {
		return
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, "POST", googleRevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		log.Printf("[Integrations] token revocation failed for %s: %v", integration.AccountKey, err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Integrations] token revocation returned %d for %s", resp.StatusCode, integration.AccountKey)
	}
}
