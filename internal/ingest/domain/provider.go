package domain

import "context"

// Provider names recognized by the sync pipeline.
const (
	ProviderGmail = "gmail"
	ProviderIMAP  = "imap"
)

// MailProvider is the single adapter contract for mailbox backends.
// Implementations translate their wire format into the domain MIME tree;
// token lifecycle is the caller's problem (see the token resolver).
type MailProvider interface {
	// ListMessageIDs returns one page of message refs matching the query,
	// plus the next page token ("" when exhausted).
	ListMessageIDs(ctx context.Context, accessToken, query, pageToken string, maxResults int64) ([]MessageRef, string, error)

	// GetMessageMetadata fetches headers and snippet only.
	GetMessageMetadata(ctx context.Context, accessToken, externalID string) (*MessageMeta, error)

	// GetMessageFull fetches and decodes the complete MIME payload.
	GetMessageFull(ctx context.Context, accessToken, externalID string) (*MimeMessage, error)
}
