package models

import (
	"time"
)

// ScrapeRun is one row of the append-only run log.
type ScrapeRun struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	JobsFound int       `json:"jobs_found"`
	NewJobs   int       `json:"new_jobs"`
	Keywords  []string  `json:"keywords"`
}

// Stats is a read-only summary of the store.
type Stats struct {
	Total   int        `json:"total_jobs"`
	Sent    int        `json:"sent_jobs"`
	Unsent  int        `json:"unsent_jobs"`
	Recent  int        `json:"recent_jobs"` // posted within RecentWindow
	LastRun *ScrapeRun `json:"last_run,omitempty"`
}

// RecentWindow is the age limit for Stats.Recent.
const RecentWindow = 7 * 24 * time.Hour
