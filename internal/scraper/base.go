// Define the collaborators a scrape run depends on
// Keep the orchestrator independent of any concrete backend

package scraper

import (
	"context"
	"net/url"

	"onlinejobs-scout/internal/models"
	"onlinejobs-scout/internal/scraper/onlinejobs"
)

// Site knows how to build search requests and read the pages they return.
type Site interface {
	//Name is the site name used in logs
	Name() string

	//SearchRequest returns the URL and query for one results page
	SearchRequest(keyword string, page int) (string, url.Values)

	//ParseListing extracts partial records from a results page
	ParseListing(body []byte, keyword string) (*onlinejobs.Listing, error)

	//ParseDetail extracts what a job page adds to its listing record
	ParseDetail(body []byte) (models.Enrichment, error)
}

// Store is the part of the deduplicating store a run needs.
type Store interface {
	Exists(ctx context.Context, jobID string) (bool, error)
	Upsert(ctx context.Context, rec *models.JobRecord) error
	Unsent(ctx context.Context) ([]models.JobRecord, error)
	RecordRun(ctx context.Context, run models.ScrapeRun) error
}

// Notifier delivers one batch of records. On success it is responsible for
// marking every record in the batch as sent.
type Notifier interface {
	SendBatch(ctx context.Context, records []models.JobRecord, batchNum, totalBatches int) error
}
