package imapmail

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"jobtrack-backend/internal/ingest/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Service implements domain.MailProvider for plain IMAP accounts. The
// access token passed to each call is the account's app password; OAuth
// refresh does not apply here.
type Service struct {
	Addr     string // host:port, TLS
	Username string
}

func NewService(addr, username string) *Service {
	return &Service{Addr: addr, Username: username}
}

func (s *Service) connect(password string) (*client.Client, error) {
	c, err := client.DialTLS(s.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial failed: %w", err)
	}
	if err := c.Login(s.Username, password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}
	return c, nil
}

// ListMessageIDs searches INBOX for recent mail. IMAP has no server-side
// keyword query comparable to Gmail's, so the relevance filter runs
// downstream on metadata; the page token is a plain UID offset.
func (s *Service) ListMessageIDs(ctx context.Context, accessToken, query, pageToken string, maxResults int64) ([]domain.MessageRef, string, error) {
	c, err := s.connect(accessToken)
	if err != nil {
		return nil, "", err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, "", fmt.Errorf("imap select failed: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().AddDate(0, 0, -30)
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, "", fmt.Errorf("imap search failed: %w", err)
	}

	offset := 0
	if pageToken != "" {
		offset, err = strconv.Atoi(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("bad page token %q", pageToken)
		}
	}
	if offset >= len(uids) {
		return nil, "", nil
	}

	end := offset + int(maxResults)
	if end > len(uids) {
		end = len(uids)
	}

	refs := make([]domain.MessageRef, 0, end-offset)
	for _, uid := range uids[offset:end] {
		refs = append(refs, domain.MessageRef{ID: strconv.FormatUint(uint64(uid), 10)})
	}

	next := ""
	if end < len(uids) {
		next = strconv.Itoa(end)
	}
	return refs, next, nil
}

func (s *Service) GetMessageMetadata(ctx context.Context, accessToken, externalID string) (*domain.MessageMeta, error) {
	c, err := s.connect(accessToken)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("imap select failed: %w", err)
	}

	seqset, err := uidSet(externalID)
	if err != nil {
		return nil, err
	}

	messages := make(chan *imap.Message, 1)
	if err := c.UidFetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages); err != nil {
		return nil, fmt.Errorf("imap fetch failed: %w", err)
	}

	msg := <-messages
	if msg == nil || msg.Envelope == nil {
		return nil, fmt.Errorf("message %s not found", externalID)
	}

	meta := &domain.MessageMeta{
		ExternalID: externalID,
		Subject:    msg.Envelope.Subject,
		Date:       msg.Envelope.Date.Format(time.RFC1123Z),
	}
	if len(msg.Envelope.From) > 0 {
		meta.From = msg.Envelope.From[0].Address()
		if msg.Envelope.From[0].PersonalName != "" {
			meta.From = fmt.Sprintf("%s <%s>", msg.Envelope.From[0].PersonalName, msg.Envelope.From[0].Address())
		}
	}
	return meta, nil
}

func (s *Service) GetMessageFull(ctx context.Context, accessToken, externalID string) (*domain.MimeMessage, error) {
	c, err := s.connect(accessToken)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("imap select failed: %w", err)
	}

	seqset, err := uidSet(externalID)
	if err != nil {
		return nil, err
	}

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, 1)
	if err := c.UidFetch(seqset, []imap.FetchItem{section.FetchItem()}, messages); err != nil {
		return nil, fmt.Errorf("imap fetch failed: %w", err)
	}

	msg := <-messages
	if msg == nil {
		return nil, fmt.Errorf("message %s not found", externalID)
	}
	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %s has no body", externalID)
	}

	return parseMessage(body, externalID)
}

// parseMessage walks the raw RFC 5322 message and flattens its parts into
// the provider-neutral MIME tree.
func parseMessage(r io.Reader, externalID string) (*domain.MimeMessage, error) {
	reader, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	root := &domain.MimePart{MimeType: "multipart/mixed"}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		data, _ := io.ReadAll(part.Body)
		child := &domain.MimePart{Body: string(data)}
		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			child.MimeType, _, _ = h.ContentType()
		case *mail.AttachmentHeader:
			child.MimeType, _, _ = h.ContentType()
			child.Filename, _ = h.Filename()
		}
		root.Parts = append(root.Parts, child)
	}

	// A single-part message collapses to its only part.
	if len(root.Parts) == 1 {
		root = root.Parts[0]
	}
	return &domain.MimeMessage{ExternalID: externalID, Payload: root}, nil
}

func uidSet(externalID string) (*imap.SeqSet, error) {
	uid, err := strconv.ParseUint(externalID, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad message id %q", externalID)
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(uid))
	return seqset, nil
}
