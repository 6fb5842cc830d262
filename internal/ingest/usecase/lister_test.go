package usecase

import (
	"context"
	"testing"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(ids ...string) []domain.MessageRef {
	out := make([]domain.MessageRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.MessageRef{ID: id, ThreadID: "t-" + id})
	}
	return out
}

func TestBuildQuery(t *testing.T) {
	query := BuildQuery(30)

	assert.Contains(t, query, "subject:interview")
	assert.Contains(t, query, "subject:offer")
	assert.Contains(t, query, `subject:"coding challenge"`)
	assert.Contains(t, query, "from:greenhouse.io")
	assert.Contains(t, query, "from:lever.co")
	assert.Contains(t, query, "from:linkedin.com")
	assert.Contains(t, query, `-"job alert"`)
	assert.Contains(t, query, "newer_than:30d")
}

func TestList_CapAppliesMidPage(t *testing.T) {
	// 10 messages over 2 pages, cap 5: the second page is entered and cut
	// short, never returned whole.
	provider := &fakeProvider{
		pages: [][]domain.MessageRef{
			refs("m1", "m2", "m3"),
			refs("m4", "m5", "m6", "m7"),
			refs("m8", "m9", "m10"),
		},
	}
	lister := NewMessageLister(provider, time.Second)

	got, err := lister.List(context.Background(), "token", 30, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "m5", got[4].ID)
	assert.Equal(t, 2, provider.listCalls)
}

func TestList_ExhaustsPagesUnderCap(t *testing.T) {
	provider := &fakeProvider{
		pages: [][]domain.MessageRef{
			refs("m1", "m2"),
			refs("m3"),
		},
	}
	lister := NewMessageLister(provider, time.Second)

	got, err := lister.List(context.Background(), "token", 7, 50)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 2, provider.listCalls)
	assert.Contains(t, provider.lastQuery, "newer_than:7d")
}

func TestList_StopsExactlyAtPageBoundary(t *testing.T) {
	provider := &fakeProvider{
		pages: [][]domain.MessageRef{
			refs("m1", "m2", "m3"),
			refs("m4", "m5"),
		},
	}
	lister := NewMessageLister(provider, time.Second)

	got, err := lister.List(context.Background(), "token", 30, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	// The cap was reached on the first page; no second request is made.
	assert.Equal(t, 1, provider.listCalls)
}

func TestList_PageCallsCarryDeadline(t *testing.T) {
	provider := &fakeProvider{pages: [][]domain.MessageRef{refs("m1")}}
	lister := NewMessageLister(provider, time.Second)

	_, err := lister.List(context.Background(), "token", 30, 10)
	require.NoError(t, err)
	assert.True(t, provider.sawDeadline())
}

func TestList_DeadlineExceededMapsToTimeout(t *testing.T) {
	provider := &fakeProvider{listErr: context.DeadlineExceeded}
	lister := NewMessageLister(provider, time.Second)

	_, err := lister.List(context.Background(), "token", 30, 10)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeTimeout))
}
