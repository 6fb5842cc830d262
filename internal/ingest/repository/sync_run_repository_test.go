package repository

import (
	"testing"
	"time"

	"jobtrack-backend/internal/ingest/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRunLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncRunRepository(db)

	run := &domain.SyncRun{IntegrationID: "int-1"}
	require.NoError(t, repo.Create(run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, domain.RunStatusRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())

	counters := domain.SyncCounters{
		Discovered: 10,
		Relevant:   6,
		Classified: 6,
		Matched:    3,
		Approved:   2,
		Denied:     1,
		Errored:    1,
	}
	require.NoError(t, repo.FinalizeCompleted(run.ID, counters))

	got, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.RunStatusCompleted, got.Status)
	assert.Equal(t, 10, got.Discovered)
	assert.Equal(t, 2, got.Approved)
	assert.Equal(t, 1, got.Errored)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.FinishedAt.After(got.StartedAt) || got.FinishedAt.Equal(got.StartedAt))
}

func TestSyncRunFinalizeFailed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncRunRepository(db)

	run := &domain.SyncRun{IntegrationID: "int-1"}
	require.NoError(t, repo.Create(run))

	require.NoError(t, repo.FinalizeFailed(run.ID, domain.SyncCounters{}, "UPSTREAM_AUTH_ERROR", "refresh token rejected"))

	got, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.RunStatusFailed, got.Status)
	assert.Equal(t, "UPSTREAM_AUTH_ERROR", got.ErrorCode)
	assert.Equal(t, "refresh token rejected", got.ErrorMessage)
}

func TestSyncRunFindByIntegration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncRunRepository(db)

	for i := 0; i < 3; i++ {
		run := &domain.SyncRun{
			IntegrationID: "int-1",
			StartedAt:     time.Now().Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(run))
	}
	other := &domain.SyncRun{IntegrationID: "int-2"}
	require.NoError(t, repo.Create(other))

	runs, err := repo.FindByIntegration("int-1", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt) || runs[0].StartedAt.Equal(runs[1].StartedAt))
}

func TestIntegrationUpsertAndCredentials(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIntegrationRepository(db)

	created, err := repo.Upsert(&domain.Integration{
		Provider:    "gmail",
		AccountKey:  "user@example.com",
		Credentials: "enc-v1",
		Status:      domain.IntegrationConnected,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	// Reconnecting the same account replaces credentials instead of
	// creating a second row.
	again, err := repo.Upsert(&domain.Integration{
		Provider:    "gmail",
		AccountKey:  "user@example.com",
		Credentials: "enc-v2",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "enc-v2", again.Credentials)

	require.NoError(t, repo.UpdateCredentials(created.ID, "enc-v3"))
	got, err := repo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "enc-v3", got.Credentials)

	require.NoError(t, repo.MarkError(created.ID, "token expired"))
	got, _ = repo.FindByID(created.ID)
	assert.Equal(t, "token expired", got.LastError)
	assert.Equal(t, domain.IntegrationError, got.Status)

	require.NoError(t, repo.MarkSynced(created.ID))
	got, _ = repo.FindByID(created.ID)
	assert.Empty(t, got.LastError)
	assert.Equal(t, domain.IntegrationConnected, got.Status)
	require.NotNil(t, got.LastSyncedAt)

	require.NoError(t, repo.Delete(created.ID))
	gone, err := repo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
