package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	ingestdomain "jobtrack-backend/internal/ingest/domain"
	jobdomain "jobtrack-backend/internal/job/domain"
	"jobtrack-backend/pkg/ai"
)

// fakeProvider serves canned pages and messages, tracking how far listing
// paginated.
type fakeProvider struct {
	pages        [][]ingestdomain.MessageRef
	metas        map[string]*ingestdomain.MessageMeta
	fulls        map[string]*ingestdomain.MimeMessage
	failMeta     map[string]error
	listErr      error
	listCalls    int
	lastQuery    string
	mu           sync.Mutex
	deadlineSeen bool
}

func (f *fakeProvider) markDeadline(ctx context.Context) {
	if _, ok := ctx.Deadline(); ok {
		f.mu.Lock()
		f.deadlineSeen = true
		f.mu.Unlock()
	}
}

func (f *fakeProvider) sawDeadline() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deadlineSeen
}

func (f *fakeProvider) ListMessageIDs(ctx context.Context, accessToken, query, pageToken string, maxResults int64) ([]ingestdomain.MessageRef, string, error) {
	f.listCalls++
	f.lastQuery = query
	f.markDeadline(ctx)
	if f.listErr != nil {
		return nil, "", f.listErr
	}

	page := 0
	if pageToken != "" {
		page, _ = strconv.Atoi(pageToken)
	}
	if page >= len(f.pages) {
		return nil, "", nil
	}
	next := ""
	if page+1 < len(f.pages) {
		next = strconv.Itoa(page + 1)
	}
	return f.pages[page], next, nil
}

func (f *fakeProvider) GetMessageMetadata(ctx context.Context, accessToken, externalID string) (*ingestdomain.MessageMeta, error) {
	f.markDeadline(ctx)
	if err, ok := f.failMeta[externalID]; ok {
		return nil, err
	}
	meta, ok := f.metas[externalID]
	if !ok {
		return nil, fmt.Errorf("unknown message %s", externalID)
	}
	return meta, nil
}

func (f *fakeProvider) GetMessageFull(ctx context.Context, accessToken, externalID string) (*ingestdomain.MimeMessage, error) {
	f.markDeadline(ctx)
	full, ok := f.fulls[externalID]
	if !ok {
		return nil, fmt.Errorf("unknown message %s", externalID)
	}
	return full, nil
}

// fakeClassifier returns a scripted result per message body marker.
type fakeClassifier struct {
	mu      sync.Mutex
	results map[string]*ai.ClassificationResult
	errs    map[string]error
	calls   int
}

func (f *fakeClassifier) ClassifyEmail(ctx context.Context, emailText string, candidates []ai.Candidate) (*ai.ClassificationResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	for marker, err := range f.errs {
		if marker != "" && strings.Contains(emailText, marker) {
			return nil, err
		}
	}
	for marker, result := range f.results {
		if marker != "" && strings.Contains(emailText, marker) {
			return result, nil
		}
	}
	return &ai.ClassificationResult{Confidence: 5}, nil
}

// fakeJobs records stage transitions and serves active applications.
type fakeJobs struct {
	mu          sync.Mutex
	active      []*jobdomain.JobApplication
	transitions []recordedTransition
	failWith    error
}

type recordedTransition struct {
	jobID      string
	toStage    string
	occurredAt int64
	outcome    string
	metadata   map[string]interface{}
}

func (f *fakeJobs) GetActiveApplications(statuses []jobdomain.ApplicationStatus) ([]*jobdomain.JobApplication, error) {
	return f.active, nil
}

func (f *fakeJobs) TransitionStage(jobID string, toStage string, occurredAtSeconds int64, metadata map[string]interface{}, outcome string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.transitions = append(f.transitions, recordedTransition{
		jobID: jobID, toStage: toStage, occurredAt: occurredAtSeconds, outcome: outcome, metadata: metadata,
	})
	return nil
}
