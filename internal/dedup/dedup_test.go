package dedup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"onlinejobs-scout/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "jobs.json")
	fs, err := OpenFileStore(path)
	require.NoError(t, err)
	fs.now = func() time.Time { return storeNow }
	return fs, path
}

func record(id string, posted time.Time) *models.JobRecord {
	return &models.JobRecord{
		JobID:          id,
		Title:          "Automation Specialist " + id,
		Company:        "Jane Cruz",
		ContactPerson:  "Jane Cruz",
		URL:            "https://www.onlinejobs.ph/jobseekers/job/automation-specialist-" + id,
		Salary:         models.NotSpecified,
		JobType:        models.JobTypeFullTime,
		Description:    models.NotSpecified,
		PostedDate:     posted,
		KeywordMatched: "automation",
		ScrapedAt:      storeNow,
	}
}

func TestFileStore_ExistsAfterUpsert(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)

	ok, err := fs.Exists(ctx, "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Upsert(ctx, record("123456", storeNow)))

	ok, err = fs.Exists(ctx, "123456")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	fs, path := newTestStore(t)

	rec := record("123456", storeNow.Add(-2*time.Hour))
	require.NoError(t, fs.Upsert(ctx, rec))
	require.NoError(t, fs.MarkSent(ctx, "123456"))
	require.NoError(t, fs.Upsert(ctx, record("777", storeNow)))
	require.NoError(t, fs.RecordRun(ctx, models.ScrapeRun{ID: "run-1", At: storeNow, JobsFound: 5, NewJobs: 2, Keywords: []string{"automation"}}))
	require.NoError(t, fs.Close())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	reopened.now = func() time.Time { return storeNow }

	ok, err := reopened.Exists(ctx, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	unsent, err := reopened.Unsent(ctx)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, "777", unsent[0].JobID)

	st, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Sent)
	assert.Equal(t, 1, st.Unsent)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, "run-1", st.LastRun.ID)
	assert.Equal(t, []string{"automation"}, st.LastRun.Keywords)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_MarkSentIdempotent(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	require.NoError(t, fs.Upsert(ctx, record("1", storeNow)))

	require.NoError(t, fs.MarkSent(ctx, "1"))
	require.NoError(t, fs.MarkSent(ctx, "1"))

	unsent, err := fs.Unsent(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsent)

	err = fs.MarkSent(ctx, "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestFileStore_UpsertPreservesSent(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	require.NoError(t, fs.Upsert(ctx, record("1", storeNow)))
	require.NoError(t, fs.MarkSent(ctx, "1"))

	updated := record("1", storeNow)
	updated.Title = "Automation Specialist (updated)"
	require.NoError(t, fs.Upsert(ctx, updated))

	assert.True(t, updated.Sent)
	unsent, err := fs.Unsent(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsent)
	assert.Equal(t, "Automation Specialist (updated)", fs.jobs["1"].Title)
}

func TestFileStore_DuplicateURL(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	require.NoError(t, fs.Upsert(ctx, record("1", storeNow)))

	clash := record("2", storeNow)
	clash.URL = record("1", storeNow).URL
	err := fs.Upsert(ctx, clash)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDuplicateURL))
	ok, _ := fs.Exists(ctx, "2")
	assert.False(t, ok)
}

func TestFileStore_UnsentNewestFirst(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	require.NoError(t, fs.Upsert(ctx, record("old", storeNow.Add(-72*time.Hour))))
	require.NoError(t, fs.Upsert(ctx, record("new", storeNow)))
	require.NoError(t, fs.Upsert(ctx, record("mid", storeNow.Add(-24*time.Hour))))

	unsent, err := fs.Unsent(ctx)
	require.NoError(t, err)

	var ids []string
	for _, r := range unsent {
		ids = append(ids, r.JobID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestFileStore_StatsAndCleanup(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestStore(t)
	require.NoError(t, fs.Upsert(ctx, record("fresh", storeNow.Add(-24*time.Hour))))
	require.NoError(t, fs.Upsert(ctx, record("week-old", storeNow.Add(-10*24*time.Hour))))
	require.NoError(t, fs.Upsert(ctx, record("ancient", storeNow.Add(-40*24*time.Hour))))

	st, err := fs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Recent)
	assert.Nil(t, st.LastRun)

	n, err := fs.Cleanup(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, _ := fs.Exists(ctx, "ancient")
	assert.False(t, ok)

	// the removed URL is free again
	require.NoError(t, fs.Upsert(ctx, record("ancient", storeNow)))
}

func TestOpenFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

func TestFileStore_CancelledContext(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.Exists(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, fs.Upsert(ctx, record("1", storeNow)), context.Canceled)
}

func TestFileStore_SeesOtherWriter(t *testing.T) {
	ctx := context.Background()
	writer, path := newTestStore(t)
	reader, err := OpenFileStore(path)
	require.NoError(t, err)
	reader.now = func() time.Time { return storeNow }

	st, err := reader.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)

	require.NoError(t, writer.Upsert(ctx, record("42", storeNow)))
	require.NoError(t, writer.RecordRun(ctx, models.ScrapeRun{ID: "run-2", At: storeNow, JobsFound: 3, NewJobs: 1}))

	st, err = reader.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1, st.Unsent)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, "run-2", st.LastRun.ID)

	unsent, err := reader.Unsent(ctx)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, "42", unsent[0].JobID)

	require.NoError(t, writer.MarkSent(ctx, "42"))
	st, err = reader.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Sent)
	assert.Equal(t, 0, st.Unsent)

	ok, err := reader.Exists(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)
}
