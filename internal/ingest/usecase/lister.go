package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/apperr"
)

// lifecycleKeywords cover the subject vocabulary of application lifecycle
// mail across common ATS templates.
var lifecycleKeywords = []string{
	"application",
	"applied",
	"interview",
	"assessment",
	"coding challenge",
	"take-home",
	"offer",
	"rejection",
	"unfortunately",
	"next steps",
	"withdrawn",
	"position",
}

// atsSenders are domains of applicant tracking systems and job boards that
// send lifecycle mail on employers' behalf.
var atsSenders = []string{
	"greenhouse.io",
	"lever.co",
	"workday.com",
	"myworkday.com",
	"ashbyhq.com",
	"smartrecruiters.com",
	"icims.com",
	"taleo.net",
	"successfactors.com",
	"bamboohr.com",
	"jobvite.com",
	"recruitee.com",
	"teamtailor.com",
	"linkedin.com",
	"indeed.com",
}

// promoExclusions knock out the newsletter/digest traffic the same senders
// also produce.
var promoExclusions = []string{
	"unsubscribe newsletter",
	"job alert",
	"jobs for you",
	"recommended jobs",
	"weekly digest",
}

// MessageLister pages through the provider's message index without ever
// fetching bodies. Each page request runs under its own timeout so a hung
// provider cannot stall the run.
type MessageLister struct {
	provider domain.MailProvider
	pageSize int64
	timeout  time.Duration
}

func NewMessageLister(provider domain.MailProvider, timeout time.Duration) *MessageLister {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MessageLister{provider: provider, pageSize: 100, timeout: timeout}
}

// BuildQuery renders the Gmail search expression for lifecycle mail newer
// than searchDays days.
func BuildQuery(searchDays int) string {
	subjects := make([]string, 0, len(lifecycleKeywords))
	for _, kw := range lifecycleKeywords {
		if strings.Contains(kw, " ") {
			subjects = append(subjects, fmt.Sprintf("subject:%q", kw))
		} else {
			subjects = append(subjects, "subject:"+kw)
		}
	}

	senders := make([]string, 0, len(atsSenders))
	for _, s := range atsSenders {
		senders = append(senders, "from:"+s)
	}

	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(strings.Join(subjects, " OR "))
	sb.WriteString(" OR ")
	sb.WriteString(strings.Join(senders, " OR "))
	sb.WriteString(")")
	for _, ex := range promoExclusions {
		sb.WriteString(fmt.Sprintf(" -%q", ex))
	}
	sb.WriteString(fmt.Sprintf(" newer_than:%dd", searchDays))
	return sb.String()
}

// List walks pages until the provider is exhausted or maxMessages refs are
// collected. The cap applies mid-page: a page is never returned whole when
// only part of it fits.
func (l *MessageLister) List(ctx context.Context, accessToken string, searchDays, maxMessages int) ([]domain.MessageRef, error) {
	query := BuildQuery(searchDays)

	var refs []domain.MessageRef
	pageToken := ""
	for {
		pageCtx, cancel := context.WithTimeout(ctx, l.timeout)
		page, next, err := l.provider.ListMessageIDs(pageCtx, accessToken, query, pageToken, l.pageSize)
		cancel()
		if err != nil {
			var appErr *apperr.AppError
			if errors.As(err, &appErr) {
				return nil, err
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, apperr.Timeout(err, "message listing timed out")
			}
			return nil, apperr.UpstreamRequest(err, "message listing failed")
		}

		for _, ref := range page {
			if len(refs) >= maxMessages {
				return refs, nil
			}
			refs = append(refs, ref)
		}

		if next == "" || len(refs) >= maxMessages {
			return refs, nil
		}
		pageToken = next
	}
}
