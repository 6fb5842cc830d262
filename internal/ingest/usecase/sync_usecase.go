package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	ingestdomain "jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/internal/ingest/repository"
	jobdomain "jobtrack-backend/internal/job/domain"
	"jobtrack-backend/pkg/ai"
	"jobtrack-backend/pkg/apperr"
	"jobtrack-backend/pkg/crypto"
)

// ActiveJobsSource supplies the candidate applications offered to the
// classifier.
type ActiveJobsSource interface {
	GetActiveApplications(statuses []jobdomain.ApplicationStatus) ([]*jobdomain.JobApplication, error)
}

// JobCollaborator is what the sync pipeline needs from the job layer.
type JobCollaborator interface {
	ActiveJobsSource
	StageTransitioner
}

// SyncOptions tune one run; zero values fall back to the configured
// defaults.
type SyncOptions struct {
	SearchDays  int
	MaxMessages int
}

// SyncSummary is returned to the caller after a run reaches a terminal
// state.
type SyncSummary struct {
	RunID    string                     `json:"run_id"`
	Status   ingestdomain.SyncRunStatus `json:"status"`
	Counters ingestdomain.SyncCounters  `json:"counters"`
}

// SyncUsecase drives one email ingestion run end to end: resolve
// credentials, list candidate mail, classify each message on a worker pool,
// persist decisions and record the run.
type SyncUsecase interface {
	RunSync(ctx context.Context, provider, accountKey string, opts SyncOptions) (*SyncSummary, error)
	SyncAllActive(ctx context.Context) error
}

type syncUsecase struct {
	integrations repository.IntegrationRepository
	messages     repository.MessageRepository
	runs         repository.SyncRunRepository
	resolver     *TokenResolver
	providers    map[string]ingestdomain.MailProvider
	classifier   ai.EmailClassifier
	jobs         JobCollaborator
	encryptor    *crypto.Encryptor

	workers     int
	searchDays  int
	maxMessages int
	httpTimeout time.Duration
}

func NewSyncUsecase(
	integrations repository.IntegrationRepository,
	messages repository.MessageRepository,
	runs repository.SyncRunRepository,
	resolver *TokenResolver,
	providers map[string]ingestdomain.MailProvider,
	classifier ai.EmailClassifier,
	jobs JobCollaborator,
	encryptor *crypto.Encryptor,
	workers, searchDays, maxMessages int,
	httpTimeout time.Duration,
) SyncUsecase {
	if workers <= 0 {
		workers = 3
	}
	if httpTimeout <= 0 {
		httpTimeout = 15 * time.Second
	}
	return &syncUsecase{
		integrations: integrations,
		messages:     messages,
		runs:         runs,
		resolver:     resolver,
		providers:    providers,
		classifier:   classifier,
		jobs:         jobs,
		encryptor:    encryptor,
		workers:      workers,
		searchDays:   searchDays,
		maxMessages:  maxMessages,
		httpTimeout:  httpTimeout,
	}
}

// messageResult is the per-message outcome funneled to the aggregator.
// Counters live only in the aggregating loop; workers never share state.
type messageResult struct {
	classified           bool
	status               ingestdomain.ProcessingStatus
	matched              bool
	autoLinkTransitioned bool
	err                  error
}

func (u *syncUsecase) RunSync(ctx context.Context, provider, accountKey string, opts SyncOptions) (*SyncSummary, error) {
	integration, err := u.integrations.FindByAccount(provider, accountKey)
	if err != nil {
		return nil, apperr.Persistence(err, "integration lookup failed")
	}
	if integration == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("no %s integration for %s", provider, accountKey))
	}
	mail, ok := u.providers[integration.Provider]
	if !ok {
		return nil, apperr.New(apperr.CodeBadRequest, fmt.Sprintf("unsupported provider %q", integration.Provider))
	}

	searchDays := opts.SearchDays
	if searchDays <= 0 {
		searchDays = u.searchDays
	}
	maxMessages := opts.MaxMessages
	if maxMessages <= 0 {
		maxMessages = u.maxMessages
	}

	// The run row exists before credentials are touched so even a token
	// failure leaves an inspectable failed run behind.
	run := &ingestdomain.SyncRun{IntegrationID: integration.ID}
	if err := u.runs.Create(run); err != nil {
		return nil, err
	}
	log.Printf("[Sync] run %s started for %s/%s", run.ID, provider, accountKey)

	var counters ingestdomain.SyncCounters

	creds, err := u.loadCredentials(integration)
	if err != nil {
		return u.failRun(run, integration, counters, err)
	}

	// OAuth refresh only applies to Gmail; IMAP accounts authenticate with
	// a static app password stored as the access token.
	resolved := creds
	if integration.Provider == ingestdomain.ProviderGmail {
		var refreshed bool
		resolved, refreshed, err = u.resolver.Resolve(ctx, creds)
		if err != nil {
			return u.failRun(run, integration, counters, err)
		}
		if refreshed {
			if err := u.storeCredentials(integration.ID, resolved); err != nil {
				return u.failRun(run, integration, counters, err)
			}
		}
	} else if resolved.AccessToken == "" {
		return u.failRun(run, integration, counters, apperr.CredentialsMissing(""))
	}

	lister := NewMessageLister(mail, u.httpTimeout)
	refs, err := lister.List(ctx, resolved.AccessToken, searchDays, maxMessages)
	if err != nil {
		return u.failRun(run, integration, counters, err)
	}
	counters.Discovered = len(refs)

	candidates, err := u.activeCandidates()
	if err != nil {
		return u.failRun(run, integration, counters, apperr.Persistence(err, "candidate lookup failed"))
	}

	// Worker pool: refs fan out over a channel, results fan in to this
	// goroutine which owns the counters.
	jobsCh := make(chan ingestdomain.MessageRef, len(refs))
	results := make(chan messageResult, len(refs))

	var wg sync.WaitGroup
	for i := 0; i < u.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobsCh {
				results <- u.processMessage(ctx, mail, integration, resolved.AccessToken, ref, candidates)
			}
		}()
	}
	for _, ref := range refs {
		jobsCh <- ref
	}
	close(jobsCh)
	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		// A message can classify successfully and still fail later in its
		// pipeline, so classified counts before the error branch.
		if res.classified {
			counters.Classified++
		}
		if res.err != nil {
			counters.Errored++
			log.Printf("[Sync] run %s message error: %v", run.ID, res.err)
			continue
		}
		if res.status != ingestdomain.StatusIgnored {
			counters.Relevant++
		}
		if res.matched {
			counters.Matched++
		}
		if res.autoLinkTransitioned {
			counters.Approved++
		}
		if res.status == ingestdomain.StatusIgnored {
			counters.Denied++
		}
	}

	if err := u.runs.FinalizeCompleted(run.ID, counters); err != nil {
		return nil, err
	}
	if err := u.integrations.MarkSynced(integration.ID); err != nil {
		log.Printf("[Sync] run %s: failed to mark integration synced: %v", run.ID, err)
	}

	log.Printf("[Sync] run %s completed: discovered=%d relevant=%d classified=%d matched=%d errored=%d",
		run.ID, counters.Discovered, counters.Relevant, counters.Classified, counters.Matched, counters.Errored)

	return &SyncSummary{RunID: run.ID, Status: ingestdomain.RunStatusCompleted, Counters: counters}, nil
}

// SyncAllActive runs a sync for every active integration, sequentially.
// One integration failing does not stop the rest.
func (u *syncUsecase) SyncAllActive(ctx context.Context) error {
	integrations, err := u.integrations.FindAllConnected()
	if err != nil {
		return apperr.Persistence(err, "integration listing failed")
	}
	for _, integration := range integrations {
		if _, err := u.RunSync(ctx, integration.Provider, integration.AccountKey, SyncOptions{}); err != nil {
			log.Printf("[Sync] scheduled sync failed for %s/%s: %v", integration.Provider, integration.AccountKey, err)
		}
	}
	return nil
}

// processMessage runs the full per-message pipeline. Every failure is
// contained to this message and reported through the result.
func (u *syncUsecase) processMessage(ctx context.Context, mail ingestdomain.MailProvider, integration *ingestdomain.Integration, accessToken string, ref ingestdomain.MessageRef, candidates []ai.Candidate) messageResult {
	normalizer := NewMessageNormalizer(mail, u.httpTimeout)
	normalized, err := normalizer.Normalize(ctx, accessToken, ref)
	if err != nil {
		return messageResult{err: err}
	}

	classification, err := u.classifier.ClassifyEmail(ctx, normalized.ClassifierText(), candidates)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return messageResult{err: apperr.Timeout(err, "classification timed out")}
		}
		return messageResult{err: apperr.ClassificationFailure(err, "")}
	}

	decision := routeDecision(classification, candidates)

	msg := &ingestdomain.Message{
		Provider:          integration.Provider,
		AccountKey:        integration.AccountKey,
		ExternalMessageID: normalized.ExternalID,
		ThreadID:          normalized.ThreadID,
		FromAddress:       normalized.FromAddress,
		FromDomain:        normalized.FromDomain,
		SenderName:        normalized.SenderName,
		Subject:           normalized.Subject,
		ReceivedAt:        normalized.ReceivedAt,
		Snippet:           normalized.Snippet,
		Label:             decision.MessageType,
		Confidence:        decision.Confidence,
		RawClassification: decision.Raw,
		Relevance:         decision.Relevance,
		StageTarget:       decision.StageTarget,
		MessageType:       decision.MessageType,
		ProcessingStatus:  decision.Status,
	}
	if decision.MatchedJob != nil {
		id := decision.MatchedJob.ID
		msg.MatchedJobID = &id
	}

	upserted, err := u.messages.Upsert(msg)
	if err != nil {
		return messageResult{classified: true, err: err}
	}

	if upserted.AutoLinkTransitioned {
		if err := applyStageEvent(u.jobs, upserted.Message, decision.Payload); err != nil {
			return messageResult{classified: true, err: err}
		}
	}

	return messageResult{
		classified:           true,
		status:               upserted.Message.ProcessingStatus,
		matched:              upserted.Message.MatchedJobID != nil,
		autoLinkTransitioned: upserted.AutoLinkTransitioned,
	}
}

func (u *syncUsecase) activeCandidates() ([]ai.Candidate, error) {
	applications, err := u.jobs.GetActiveApplications(nil)
	if err != nil {
		return nil, err
	}
	candidates := make([]ai.Candidate, 0, len(applications))
	for _, app := range applications {
		candidates = append(candidates, ai.Candidate{ID: app.ID, Employer: app.Employer, Title: app.Title})
	}
	return candidates, nil
}

func (u *syncUsecase) loadCredentials(integration *ingestdomain.Integration) (ingestdomain.Credentials, error) {
	var creds ingestdomain.Credentials
	if integration.Credentials == "" {
		return creds, apperr.CredentialsMissing("")
	}
	plaintext, err := u.encryptor.Decrypt(integration.Credentials)
	if err != nil {
		return creds, apperr.CredentialsMissing("stored credentials could not be decrypted")
	}
	if err := json.Unmarshal([]byte(plaintext), &creds); err != nil {
		return creds, apperr.CredentialsMissing("stored credentials are malformed")
	}
	return creds, nil
}

func (u *syncUsecase) storeCredentials(integrationID string, creds ingestdomain.Credentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return apperr.Persistence(err, "credential encoding failed")
	}
	encrypted, err := u.encryptor.Encrypt(string(raw))
	if err != nil {
		return apperr.Persistence(err, "credential encryption failed")
	}
	return u.integrations.UpdateCredentials(integrationID, encrypted)
}

// failRun marks the run and the integration failed, then propagates the
// error so the caller sees the same code the run recorded.
func (u *syncUsecase) failRun(run *ingestdomain.SyncRun, integration *ingestdomain.Integration, counters ingestdomain.SyncCounters, err error) (*SyncSummary, error) {
	code := apperr.CodeOf(err)
	if finErr := u.runs.FinalizeFailed(run.ID, counters, code, err.Error()); finErr != nil {
		log.Printf("[Sync] run %s: failed to record failure: %v", run.ID, finErr)
	}
	if markErr := u.integrations.MarkError(integration.ID, err.Error()); markErr != nil {
		log.Printf("[Sync] run %s: failed to flag integration: %v", run.ID, markErr)
	}
	log.Printf("[Sync] run %s failed: %v", run.ID, err)
	return nil, err
}
