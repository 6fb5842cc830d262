package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"jobtrack-backend/internal/ingest/domain"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Service implements domain.MailProvider against the Gmail API. A fresh
// API client is built per call from the caller's access token; token
// refresh happens upstream, before the provider is used.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) newClient(ctx context.Context, accessToken string) (*gmail.Service, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	srv, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// ListMessageIDs returns one page of message references matching the query,
// plus the token for the next page ("" when exhausted).
func (s *Service) ListMessageIDs(ctx context.Context, accessToken, query, pageToken string, maxResults int64) ([]domain.MessageRef, string, error) {
	srv, err := s.newClient(ctx, accessToken)
	if err != nil {
		return nil, "", err
	}

	call := srv.Users.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("unable to list messages: %w", err)
	}

	refs := make([]domain.MessageRef, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		refs = append(refs, domain.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, resp.NextPageToken, nil
}

// GetMessageMetadata fetches headers and snippet without the body.
func (s *Service) GetMessageMetadata(ctx context.Context, accessToken, externalID string) (*domain.MessageMeta, error) {
	srv, err := s.newClient(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", externalID).
		Format("metadata").
		MetadataHeaders("From", "Subject", "Date").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get message %s: %w", externalID, err)
	}

	meta := &domain.MessageMeta{
		ExternalID: msg.Id,
		ThreadID:   msg.ThreadId,
		Snippet:    msg.Snippet,
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				meta.From = h.Value
			case "Subject":
				meta.Subject = h.Value
			case "Date":
				meta.Date = h.Value
			}
		}
	}
	return meta, nil
}

// GetMessageFull fetches the complete MIME tree with decoded part bodies.
func (s *Service) GetMessageFull(ctx context.Context, accessToken, externalID string) (*domain.MimeMessage, error) {
	srv, err := s.newClient(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", externalID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get message %s: %w", externalID, err)
	}

	return &domain.MimeMessage{
		ExternalID: msg.Id,
		Payload:    convertPart(msg.Payload),
	}, nil
}

// convertPart maps the Gmail payload tree onto the provider-neutral part
// tree, decoding base64url bodies as it goes.
func convertPart(part *gmail.MessagePart) *domain.MimePart {
	if part == nil {
		return nil
	}

	converted := &domain.MimePart{
		MimeType: part.MimeType,
		Filename: part.Filename,
	}

	if part.Body != nil && part.Body.Data != "" {
		decoded, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			// Some senders omit padding.
			decoded, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		}
		if err == nil {
			converted.Body = string(decoded)
		}
	}

	for _, child := range part.Parts {
		if c := convertPart(child); c != nil {
			converted.Parts = append(converted.Parts, c)
		}
	}
	return converted
}
