package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"onlinejobs-scout/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real PostgreSQL; set DATABASE_URL to enable.
func connectTestDB(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if testing.Short() || dsn == "" {
		t.Skip("Skipping PostgreSQL integration test")
	}
	repo, err := ConnectDB(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(id string) *models.JobRecord {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.JobRecord{
		JobID:          id,
		Title:          "Automation Specialist",
		Company:        "Jane Cruz",
		ContactPerson:  "Jane Cruz",
		URL:            "https://www.onlinejobs.ph/jobseekers/job/automation-specialist-" + id,
		Salary:         "$800/month",
		JobType:        models.JobTypeFullTime,
		Description:    models.NotSpecified,
		PostedDate:     now,
		KeywordMatched: "automation",
		ScrapedAt:      now,
	}
}

func TestRepository_UpsertLifecycle(t *testing.T) {
	repo := connectTestDB(t)
	ctx := context.Background()

	id := fmt.Sprintf("t%d", time.Now().UnixNano())
	t.Cleanup(func() { repo.db.Exec(context.Background(), `DELETE FROM jobs WHERE job_id = $1`, id) })

	ok, err := repo.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := testRecord(id)
	require.NoError(t, repo.Upsert(ctx, rec))

	ok, err = repo.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.MarkSent(ctx, id))
	require.NoError(t, repo.MarkSent(ctx, id))

	again := testRecord(id)
	again.Title = "Automation Specialist II"
	require.NoError(t, repo.Upsert(ctx, again))
	assert.True(t, again.Sent, "upsert keeps sent")

	unsent, err := repo.Unsent(ctx)
	require.NoError(t, err)
	for _, r := range unsent {
		assert.NotEqual(t, id, r.JobID)
	}

	err = repo.MarkSent(ctx, id+"-missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestRepository_DuplicateURL(t *testing.T) {
	repo := connectTestDB(t)
	ctx := context.Background()

	a := fmt.Sprintf("a%d", time.Now().UnixNano())
	b := a + "b"
	t.Cleanup(func() { repo.db.Exec(context.Background(), `DELETE FROM jobs WHERE job_id IN ($1, $2)`, a, b) })

	require.NoError(t, repo.Upsert(ctx, testRecord(a)))

	clash := testRecord(b)
	clash.URL = testRecord(a).URL
	err := repo.Upsert(ctx, clash)
	assert.True(t, errors.Is(err, models.ErrDuplicateURL))
}

func TestRepository_RecordRunAndStats(t *testing.T) {
	repo := connectTestDB(t)
	ctx := context.Background()

	run := models.ScrapeRun{
		ID:        uuid.NewString(),
		At:        time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond),
		JobsFound: 12,
		NewJobs:   3,
		Keywords:  []string{"automation", "admin"},
	}
	t.Cleanup(func() { repo.db.Exec(context.Background(), `DELETE FROM scrape_history WHERE run_id = $1::uuid`, run.ID) })
	require.NoError(t, repo.RecordRun(ctx, run))

	st, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, run.ID, st.LastRun.ID)
	assert.Equal(t, run.Keywords, st.LastRun.Keywords)
	assert.Equal(t, st.Total-st.Sent, st.Unsent)
}
