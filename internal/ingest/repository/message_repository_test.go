package repository

import (
	"testing"
	"time"

	"jobtrack-backend/internal/ingest/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)&mode=memory"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Integration{},
		&domain.Message{},
		&domain.SyncRun{},
	))
	t.Cleanup(func() {
		db.Exec("DELETE FROM messages")
		db.Exec("DELETE FROM integrations")
		db.Exec("DELETE FROM sync_runs")
	})
	return db
}

func sampleMessage(status domain.ProcessingStatus) *domain.Message {
	return &domain.Message{
		Provider:          "gmail",
		AccountKey:        "user@example.com",
		ExternalMessageID: "msg-001",
		FromAddress:       "no-reply@greenhouse.io",
		FromDomain:        "greenhouse.io",
		Subject:           "Interview invitation",
		ReceivedAt:        time.Now().Add(-time.Hour),
		Label:             "interview_invite",
		Confidence:        96,
		Relevance:         domain.RelevanceRelevant,
		StageTarget:       domain.StageTargetInterview,
		ProcessingStatus:  status,
	}
}

func TestMessageUpsert_CreateTransitions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	jobID := "job-1"
	msg := sampleMessage(domain.StatusAutoLinked)
	msg.MatchedJobID = &jobID

	result, err := repo.Upsert(msg)
	require.NoError(t, err)
	assert.True(t, result.WasCreated)
	assert.True(t, result.AutoLinkTransitioned)
	assert.NotEmpty(t, result.Message.ID)
}

func TestMessageUpsert_ReSyncDoesNotRetransition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	jobID := "job-1"
	first := sampleMessage(domain.StatusAutoLinked)
	first.MatchedJobID = &jobID
	_, err := repo.Upsert(first)
	require.NoError(t, err)

	second := sampleMessage(domain.StatusAutoLinked)
	second.MatchedJobID = &jobID
	result, err := repo.Upsert(second)
	require.NoError(t, err)

	assert.False(t, result.WasCreated)
	assert.False(t, result.AutoLinkTransitioned)
	assert.Equal(t, domain.StatusAutoLinked, result.PreviousStatus)

	var count int64
	db.Model(&domain.Message{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMessageUpsert_PendingToAutoLinkedTransitions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	_, err := repo.Upsert(sampleMessage(domain.StatusPendingUser))
	require.NoError(t, err)

	jobID := "job-1"
	upgraded := sampleMessage(domain.StatusAutoLinked)
	upgraded.MatchedJobID = &jobID
	result, err := repo.Upsert(upgraded)
	require.NoError(t, err)

	assert.True(t, result.AutoLinkTransitioned)
	assert.Equal(t, domain.StatusPendingUser, result.PreviousStatus)
	assert.Equal(t, domain.StatusAutoLinked, result.Message.ProcessingStatus)
}

func TestMessageUpsert_PreservesManualLink(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	created, err := repo.Upsert(sampleMessage(domain.StatusPendingUser))
	require.NoError(t, err)

	manualJob := "job-manual"
	decided, err := repo.Decide(created.Message.ID, domain.StatusManualLinked, &manualJob, "user@example.com", time.Now())
	require.NoError(t, err)
	require.Equal(t, domain.StatusManualLinked, decided.ProcessingStatus)

	autoJob := "job-auto"
	resync := sampleMessage(domain.StatusAutoLinked)
	resync.MatchedJobID = &autoJob
	result, err := repo.Upsert(resync)
	require.NoError(t, err)

	assert.False(t, result.AutoLinkTransitioned)
	assert.Equal(t, domain.StatusManualLinked, result.Message.ProcessingStatus)
	require.NotNil(t, result.Message.MatchedJobID)
	assert.Equal(t, manualJob, *result.Message.MatchedJobID)
}

func TestMessageUpsert_PreservesHumanIgnore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	created, err := repo.Upsert(sampleMessage(domain.StatusPendingUser))
	require.NoError(t, err)

	_, err = repo.Decide(created.Message.ID, domain.StatusIgnored, nil, "user@example.com", time.Now())
	require.NoError(t, err)

	jobID := "job-1"
	resync := sampleMessage(domain.StatusAutoLinked)
	resync.MatchedJobID = &jobID
	result, err := repo.Upsert(resync)
	require.NoError(t, err)

	assert.False(t, result.AutoLinkTransitioned)
	assert.Equal(t, domain.StatusIgnored, result.Message.ProcessingStatus)
	assert.Nil(t, result.Message.MatchedJobID)
}

func TestMessageUpsert_PipelineIgnoreIsNotSticky(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	// Ignored by the pipeline, no human decision recorded.
	_, err := repo.Upsert(sampleMessage(domain.StatusIgnored))
	require.NoError(t, err)

	jobID := "job-1"
	resync := sampleMessage(domain.StatusAutoLinked)
	resync.MatchedJobID = &jobID
	result, err := repo.Upsert(resync)
	require.NoError(t, err)

	assert.True(t, result.AutoLinkTransitioned)
	assert.Equal(t, domain.StatusAutoLinked, result.Message.ProcessingStatus)
}

func TestMessageUpsert_RefreshesClassificationFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	_, err := repo.Upsert(sampleMessage(domain.StatusPendingUser))
	require.NoError(t, err)

	resync := sampleMessage(domain.StatusPendingUser)
	resync.Label = "rejection"
	resync.Confidence = 72
	resync.StageTarget = domain.StageTargetRejected
	result, err := repo.Upsert(resync)
	require.NoError(t, err)

	assert.Equal(t, "rejection", result.Message.Label)
	assert.Equal(t, 72, result.Message.Confidence)
	assert.Equal(t, domain.StageTargetRejected, result.Message.StageTarget)
}

func TestMessageFindByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	for i, id := range []string{"a", "b", "c"} {
		msg := sampleMessage(domain.StatusPendingUser)
		msg.ExternalMessageID = id
		msg.ReceivedAt = time.Now().Add(-time.Duration(i) * time.Hour)
		_, err := repo.Upsert(msg)
		require.NoError(t, err)
	}
	other := sampleMessage(domain.StatusIgnored)
	other.ExternalMessageID = "d"
	_, err := repo.Upsert(other)
	require.NoError(t, err)

	messages, total, err := repo.FindByStatus(domain.StatusPendingUser, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, messages, 2)
	assert.Equal(t, "a", messages[0].ExternalMessageID)
}
