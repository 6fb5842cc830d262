package domain

// MimePart is one node of a decoded MIME tree. Exactly one shape applies:
// a leaf (Body holds the already-decoded text, Parts empty) or a container
// (MimeType multipart/*, Parts non-empty). Providers decode transfer
// encodings at the API boundary so the normalizer never sees base64.
type MimePart struct {
	MimeType string
	Filename string
	Body     string
	Parts    []*MimePart
}

// IsMultipart reports whether the node is a container.
func (p *MimePart) IsMultipart() bool {
	return len(p.Parts) > 0
}

// MessageRef is a listed candidate: ID plus thread, no body.
type MessageRef struct {
	ID       string
	ThreadID string
}

// MessageMeta is the lightweight per-message fetch: raw headers + snippet.
type MessageMeta struct {
	ExternalID string
	ThreadID   string
	From       string // raw header, e.g. `Acme Recruiting <no-reply@acme.com>`
	Subject    string
	Date       string // raw header
	Snippet    string
}

// MimeMessage is the full-body fetch.
type MimeMessage struct {
	ExternalID string
	Payload    *MimePart
}
