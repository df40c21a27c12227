package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onlinejobs-scout/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		job_id          TEXT PRIMARY KEY,
		title           VARCHAR(255) NOT NULL,
		company         VARCHAR(100) NOT NULL,
		contact_person  VARCHAR(100) NOT NULL,
		url             TEXT NOT NULL,
		salary          VARCHAR(50) NOT NULL,
		job_type        VARCHAR(50) NOT NULL,
		description     TEXT NOT NULL,
		posted_date     TIMESTAMPTZ NOT NULL,
		keyword_matched TEXT NOT NULL,
		scraped_at      TIMESTAMPTZ NOT NULL,
		sent            BOOLEAN NOT NULL DEFAULT FALSE,
		CONSTRAINT jobs_url_key UNIQUE (url)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_posted_date ON jobs (posted_date)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_sent ON jobs (sent)`,
	`CREATE TABLE IF NOT EXISTS scrape_history (
		run_id      UUID PRIMARY KEY,
		scraped_at  TIMESTAMPTZ NOT NULL,
		jobs_found  INTEGER NOT NULL,
		new_jobs    INTEGER NOT NULL,
		keywords    TEXT[] NOT NULL
	)`,
}

const jobColumns = `job_id, title, company, contact_person, url, salary, job_type, description, posted_date, keyword_matched, scraped_at, sent`

type Repository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Transaction-mode poolers (PgBouncer, Supabase) reject cached prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	r := &Repository{db: pool, now: time.Now}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		r.db.Close()
	}
	return nil
}

// ---------------- JOB OPERATIONS ----------------

func (r *Repository) Exists(ctx context.Context, jobID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE job_id = $1)`, jobID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check job %s: %w", jobID, err)
	}
	return exists, nil
}

// Upsert inserts a job or refreshes its fields; sent is never reset.
func (r *Repository) Upsert(ctx context.Context, rec *models.JobRecord) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (job_id)
		DO UPDATE SET title = EXCLUDED.title, company = EXCLUDED.company,
			contact_person = EXCLUDED.contact_person, url = EXCLUDED.url,
			salary = EXCLUDED.salary, job_type = EXCLUDED.job_type,
			description = EXCLUDED.description, posted_date = EXCLUDED.posted_date,
			keyword_matched = EXCLUDED.keyword_matched, scraped_at = EXCLUDED.scraped_at,
			sent = jobs.sent OR EXCLUDED.sent
		RETURNING sent`

	err := r.db.QueryRow(ctx, query,
		rec.JobID, rec.Title, rec.Company, rec.ContactPerson, rec.URL, rec.Salary,
		rec.JobType, rec.Description, rec.PostedDate, rec.KeywordMatched, rec.ScrapedAt, rec.Sent,
	).Scan(&rec.Sent)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "jobs_url_key" {
			return fmt.Errorf("upsert %s: %w", rec.JobID, models.ErrDuplicateURL)
		}
		return fmt.Errorf("failed to save job %s: %w", rec.JobID, err)
	}
	return nil
}

func (r *Repository) MarkSent(ctx context.Context, jobID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE jobs SET sent = TRUE WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("mark sent %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark sent %s: %w", jobID, models.ErrNotFound)
	}
	return nil
}

// Unsent returns every job not yet notified, newest posting first.
func (r *Repository) Unsent(ctx context.Context) ([]models.JobRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE sent = FALSE ORDER BY posted_date DESC, job_id`)
	if err != nil {
		return nil, fmt.Errorf("query unsent jobs: %w", err)
	}
	recs, err := pgx.CollectRows(rows, scanJob)
	if err != nil {
		return nil, fmt.Errorf("scan unsent jobs: %w", err)
	}
	return recs, nil
}

func scanJob(row pgx.CollectableRow) (models.JobRecord, error) {
	var rec models.JobRecord
	err := row.Scan(&rec.JobID, &rec.Title, &rec.Company, &rec.ContactPerson, &rec.URL, &rec.Salary,
		&rec.JobType, &rec.Description, &rec.PostedDate, &rec.KeywordMatched, &rec.ScrapedAt, &rec.Sent)
	return rec, err
}

// Cleanup removes jobs posted before now-olderThan.
func (r *Repository) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE posted_date < $1`, r.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("cleanup jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ---------------- RUN HISTORY ----------------

func (r *Repository) RecordRun(ctx context.Context, run models.ScrapeRun) error {
	keywords := run.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO scrape_history (run_id, scraped_at, jobs_found, new_jobs, keywords) VALUES ($1::uuid, $2, $3, $4, $5::text[])`,
		run.ID, run.At, run.JobsFound, run.NewJobs, keywords)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

func (r *Repository) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE sent),
		       COUNT(*) FILTER (WHERE posted_date >= $1)
		FROM jobs`, r.now().Add(-models.RecentWindow)).Scan(&st.Total, &st.Sent, &st.Recent)
	if err != nil {
		return st, fmt.Errorf("count jobs: %w", err)
	}
	st.Unsent = st.Total - st.Sent

	var run models.ScrapeRun
	err = r.db.QueryRow(ctx, `
		SELECT run_id::text, scraped_at, jobs_found, new_jobs, keywords
		FROM scrape_history ORDER BY scraped_at DESC LIMIT 1`).
		Scan(&run.ID, &run.At, &run.JobsFound, &run.NewJobs, &run.Keywords)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return st, fmt.Errorf("last run: %w", err)
	default:
		st.LastRun = &run
	}
	return st, nil
}
