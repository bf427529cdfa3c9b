package infrastructure

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidgrab/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteRunRepository {
	t.Helper()
	repo, err := NewSQLiteRunRepository(MemoryDSN("repo-" + uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newRecord(url string) *domain.RunRecord {
	return domain.NewRunRecord(uuid.NewString(), domain.DownloadConfig{
		URL:       url,
		TargetDir: "/tmp/out",
		Mode:      domain.MediaVideo,
		Quality:   domain.QualityBest,
	})
}

func TestSQLiteRunRepository_CreateAndFind(t *testing.T) {
	repo := setupTestRepo(t)

	run := newRecord("https://example.com/a")
	require.NoError(t, repo.Create(run))

	found, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.URL, found.URL)
	assert.Equal(t, domain.SessionRunning, found.State)
	assert.Equal(t, domain.ExitCodeUnknown, found.ExitCode)
}

func TestSQLiteRunRepository_FindByIDNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindByID("missing")

	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestSQLiteRunRepository_Update(t *testing.T) {
	repo := setupTestRepo(t)

	run := newRecord("https://example.com/a")
	require.NoError(t, repo.Create(run))

	run.MarkFinished(domain.RunOutcome{Kind: domain.OutcomeFailed, ExitCode: 1, Errors: []string{"ERROR: boom"}})
	require.NoError(t, repo.Update(run))

	found, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionFinished, found.State)
	assert.Equal(t, domain.OutcomeFailed, found.Outcome)
	assert.Equal(t, "ERROR: boom", found.ErrorMessage)
	require.NotNil(t, found.FinishedAt)
}

func TestSQLiteRunRepository_Delete(t *testing.T) {
	repo := setupTestRepo(t)

	run := newRecord("https://example.com/a")
	require.NoError(t, repo.Create(run))
	require.NoError(t, repo.Delete(run.ID))

	_, err := repo.FindByID(run.ID)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
}

func TestSQLiteRunRepository_FindAll(t *testing.T) {
	repo := setupTestRepo(t)

	first := newRecord("https://example.com/1")
	require.NoError(t, repo.Create(first))
	time.Sleep(10 * time.Millisecond)
	second := newRecord("https://example.com/2")
	second.MarkFinished(domain.RunOutcome{Kind: domain.OutcomeSucceeded})
	require.NoError(t, repo.Create(second))

	all, err := repo.FindAll(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	finished, err := repo.FindAll(map[string]interface{}{"state": domain.SessionFinished})
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, second.ID, finished[0].ID)

	_, err = repo.FindAll(map[string]interface{}{"1=1; DROP TABLE run_records; --": 1})
	assert.Error(t, err)
}

func TestSQLiteRunRepository_GetStats(t *testing.T) {
	repo := setupTestRepo(t)

	outcomes := []domain.OutcomeKind{
		domain.OutcomeSucceeded,
		domain.OutcomeSucceeded,
		domain.OutcomeFailed,
		domain.OutcomeCancelled,
		domain.OutcomeLaunchFailed,
	}
	for _, kind := range outcomes {
		run := newRecord("https://example.com/x")
		run.MarkFinished(domain.RunOutcome{Kind: kind})
		require.NoError(t, repo.Create(run))
	}
	require.NoError(t, repo.Create(newRecord("https://example.com/running")))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Total)
	assert.Equal(t, int64(1), stats.Running)
	assert.Equal(t, int64(2), stats.Succeeded)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(1), stats.LaunchFailed)
}

func TestMemoryDSN_Isolated(t *testing.T) {
	a := setupTestRepo(t)
	b := setupTestRepo(t)

	require.NoError(t, a.Create(newRecord("https://example.com/a")))

	runs, err := b.FindAll(nil)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
