package scraper

import (
	"fmt"
	"time"
)

// Report is the run-level accounting of one Run.
type Report struct {
	RunID          string
	Keywords       int
	PagesFetched   int
	PageErrors     int
	ListingMisses  int
	StalePageStops int
	UniqueJobs     int
	KnownJobs      int
	DetailErrors   int
	Filtered       int
	SaveErrors     int
	NewJobs        int
	Notified       int
	NotifyErrors   int
	Duration       time.Duration
}

// HasErrors reports whether any unit of work failed.
func (r *Report) HasErrors() bool {
	return r.PageErrors+r.DetailErrors+r.SaveErrors+r.NotifyErrors > 0
}

func (r *Report) String() string {
	return fmt.Sprintf(
		"keywords=%d pages=%d page_errors=%d misses=%d stale_stops=%d unique=%d known=%d detail_errors=%d filtered=%d save_errors=%d new=%d notified=%d notify_errors=%d took=%s",
		r.Keywords, r.PagesFetched, r.PageErrors, r.ListingMisses, r.StalePageStops, r.UniqueJobs, r.KnownJobs,
		r.DetailErrors, r.Filtered, r.SaveErrors, r.NewJobs, r.Notified, r.NotifyErrors,
		r.Duration.Round(time.Millisecond),
	)
}
