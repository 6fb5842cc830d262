package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/apperr"

	"golang.org/x/net/html"
)

const (
	classifierTextBudget = 12000
	plainPartMinLength   = 50
)

// NormalizedMessage is the provider-neutral shape handed to classification.
type NormalizedMessage struct {
	ExternalID  string
	ThreadID    string
	FromAddress string
	FromDomain  string
	SenderName  string
	Subject     string
	ReceivedAt  time.Time
	Snippet     string
	Body        string
}

// MessageNormalizer turns a provider message into classifier-ready text.
// Both provider round-trips run under the per-call timeout.
type MessageNormalizer struct {
	provider domain.MailProvider
	timeout  time.Duration
}

func NewMessageNormalizer(provider domain.MailProvider, timeout time.Duration) *MessageNormalizer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MessageNormalizer{provider: provider, timeout: timeout}
}

// Normalize runs the two provider round-trips for one message: the cheap
// metadata fetch, then the full MIME tree for the body.
func (n *MessageNormalizer) Normalize(ctx context.Context, accessToken string, ref domain.MessageRef) (*NormalizedMessage, error) {
	metaCtx, cancel := context.WithTimeout(ctx, n.timeout)
	meta, err := n.provider.GetMessageMetadata(metaCtx, accessToken, ref.ID)
	cancel()
	if err != nil {
		return nil, fetchError(err, "metadata fetch")
	}

	name, addr := parseFromHeader(meta.From)
	msg := &NormalizedMessage{
		ExternalID:  meta.ExternalID,
		ThreadID:    meta.ThreadID,
		FromAddress: addr,
		FromDomain:  domainOf(addr),
		SenderName:  name,
		Subject:     meta.Subject,
		ReceivedAt:  parseDateHeader(meta.Date),
		Snippet:     meta.Snippet,
	}
	if msg.ThreadID == "" {
		msg.ThreadID = ref.ThreadID
	}

	fullCtx, cancel := context.WithTimeout(ctx, n.timeout)
	full, err := n.provider.GetMessageFull(fullCtx, accessToken, ref.ID)
	cancel()
	if err != nil {
		return nil, fetchError(err, "full message fetch")
	}
	msg.Body = ExtractBody(full.Payload)
	return msg, nil
}

func fetchError(err error, what string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(err, what+" timed out")
	}
	return apperr.UpstreamRequest(err, what+" failed")
}

// ClassifierText renders the bounded From/Subject/Date/Body block the
// classifier receives.
func (m *NormalizedMessage) ClassifierText() string {
	from := m.FromAddress
	if m.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", m.SenderName, m.FromAddress)
	}
	text := fmt.Sprintf("From: %s\nSubject: %s\nDate: %s\n\n%s",
		from, m.Subject, m.ReceivedAt.Format(time.RFC1123Z), m.Body)
	if len(text) > classifierTextBudget {
		// Back off to a rune boundary so the cut never leaves a broken
		// multi-byte sequence at the tail.
		cut := classifierTextBudget
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

// parseFromHeader splits a From header into display name and address,
// falling back to the raw header as the address when parsing fails.
func parseFromHeader(header string) (name, addr string) {
	parsed, err := mail.ParseAddress(header)
	if err != nil {
		return "", strings.TrimSpace(header)
	}
	return parsed.Name, parsed.Address
}

func domainOf(addr string) string {
	if at := strings.LastIndex(addr, "@"); at != -1 {
		return strings.ToLower(addr[at+1:])
	}
	return ""
}

// parseDateHeader accepts the common mail date formats and defaults to now
// so a mangled header never drops a message.
func parseDateHeader(header string) time.Time {
	if header == "" {
		return time.Now()
	}
	if t, err := mail.ParseDate(header); err == nil {
		return t
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC3339} {
		if t, err := time.Parse(layout, header); err == nil {
			return t
		}
	}
	return time.Now()
}

// ExtractBody walks the decoded MIME tree and assembles readable text.
// multipart/alternative prefers the plain-text child when it carries real
// content, other multiparts recurse, text leaves emit. Chunks repeated
// across parts (mailers often duplicate the plain body) are emitted once.
func ExtractBody(part *domain.MimePart) string {
	if part == nil {
		return ""
	}
	var chunks []string
	seen := make(map[string]bool)
	walkPart(part, &chunks, seen)
	return strings.TrimSpace(strings.Join(chunks, "\n\n"))
}

func walkPart(part *domain.MimePart, chunks *[]string, seen map[string]bool) {
	if part == nil {
		return
	}

	mimeType := strings.ToLower(part.MimeType)
	switch {
	case mimeType == "multipart/alternative":
		emitChunk(chooseAlternative(part.Parts), chunks, seen)

	case part.IsMultipart():
		for _, child := range part.Parts {
			walkPart(child, chunks, seen)
		}

	case strings.HasPrefix(mimeType, "text/plain"):
		emitChunk(part.Body, chunks, seen)

	case strings.HasPrefix(mimeType, "text/html"):
		emitChunk(htmlToText(part.Body), chunks, seen)
	}
}

// chooseAlternative picks the best rendering of an alternative group: the
// plain child when its decoded body is substantial, else the HTML child
// converted to text, else whatever plain content exists. Renditions may sit
// inside nested containers (HTML commonly arrives as multipart/related), so
// the search descends into multipart children.
func chooseAlternative(parts []*domain.MimePart) string {
	plain := findTextPart(parts, "text/plain")
	htmlBody := findTextPart(parts, "text/html")

	if len(strings.TrimSpace(plain)) > plainPartMinLength {
		return plain
	}
	if htmlBody != "" {
		return htmlToText(htmlBody)
	}
	return plain
}

// findTextPart returns the body of the first part matching the MIME type
// prefix, searching depth-first through nested multiparts.
func findTextPart(parts []*domain.MimePart, prefix string) string {
	for _, p := range parts {
		mimeType := strings.ToLower(p.MimeType)
		if strings.HasPrefix(mimeType, prefix) {
			return p.Body
		}
		if p.IsMultipart() {
			if body := findTextPart(p.Parts, prefix); body != "" {
				return body
			}
		}
	}
	return ""
}

func emitChunk(chunk string, chunks *[]string, seen map[string]bool) {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return
	}
	sig := chunkSignature(chunk)
	if seen[sig] {
		return
	}
	seen[sig] = true
	*chunks = append(*chunks, chunk)
}

// chunkSignature collapses whitespace and case so trivially reformatted
// duplicates of the same content dedupe.
func chunkSignature(chunk string) string {
	return strings.ToLower(strings.Join(strings.Fields(chunk), " "))
}

// htmlToText strips markup down to readable text. Script, style and head
// subtrees are dropped entirely; anchor hrefs and images do not survive.
func htmlToText(source string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(source))
	var sb strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(collapseBlankLines(sb.String()))

		case html.StartTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "script", "style", "head":
				skipDepth++
			case "br", "p", "div", "tr", "li", "h1", "h2", "h3", "h4":
				if skipDepth == 0 {
					sb.WriteString("\n")
				}
			}

		case html.EndTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "script", "style", "head":
				if skipDepth > 0 {
					skipDepth--
				}
			}

		case html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data == "br" && skipDepth == 0 {
				sb.WriteString("\n")
			}

		case html.TextToken:
			if skipDepth == 0 {
				text := strings.TrimSpace(tokenizer.Token().Data)
				if text != "" {
					sb.WriteString(text)
					sb.WriteString(" ")
				}
			}
		}
	}
}

func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
