package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"onlinejobs-scout/internal/config"
	"onlinejobs-scout/internal/fetch"
	"onlinejobs-scout/internal/filter"
	"onlinejobs-scout/internal/models"

	"github.com/google/uuid"
)

// Scraper runs keyword searches, enriches new postings from their detail
// pages, stores the relevant ones and hands unsent records to the notifier.
// Requests are strictly sequential.
type Scraper struct {
	cfg      *config.Config
	site     Site
	fetcher  fetch.Fetcher
	store    Store
	matcher  *filter.Matcher
	notifier Notifier

	sleep    Sleeper
	rnd      *rand.Rand
	now      func() time.Time
	requests int
}

// Option adjusts a Scraper.
type Option func(*Scraper)

// WithSleeper replaces the politeness sleeper.
func WithSleeper(s Sleeper) Option {
	return func(sc *Scraper) { sc.sleep = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(sc *Scraper) { sc.now = now }
}

func New(cfg *config.Config, site Site, fetcher fetch.Fetcher, store Store, matcher *filter.Matcher, notifier Notifier, opts ...Option) *Scraper {
	s := &Scraper{
		cfg:      cfg,
		site:     site,
		fetcher:  fetcher,
		store:    store,
		matcher:  matcher,
		notifier: notifier,
		sleep:    sleepCtx,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// candidates keeps listing records unique by job ID. Later sightings replace
// field values but keep the first-seen position.
type candidates struct {
	order []string
	byID  map[string]models.JobRecord
}

func newCandidates() *candidates {
	return &candidates{byID: make(map[string]models.JobRecord)}
}

func (c *candidates) add(rec models.JobRecord) {
	if _, ok := c.byID[rec.JobID]; !ok {
		c.order = append(c.order, rec.JobID)
	}
	c.byID[rec.JobID] = rec
}

func (c *candidates) list() []models.JobRecord {
	out := make([]models.JobRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Run performs one full pass. It only returns an error when ctx is cancelled;
// every other failure is counted in the report.
func (s *Scraper) Run(ctx context.Context, daysBack int) (*Report, error) {
	start := s.now()
	rep := &Report{RunID: uuid.NewString()}
	s.requests = 0

	log.Printf("🕷️ Starting %s scrape - looking %d days back", s.site.Name(), daysBack)

	found := newCandidates()
	for i, keyword := range s.cfg.Keywords {
		if i > 0 {
			if err := s.pause(ctx, s.cfg.KeywordDelayMin, s.cfg.KeywordDelayMax); err != nil {
				return s.finish(rep, start), err
			}
		}
		log.Printf("🔍 Searching for keyword: '%s'", keyword)
		rep.Keywords++
		n, err := s.searchKeyword(ctx, keyword, daysBack, found, rep)
		if err != nil {
			return s.finish(rep, start), err
		}
		log.Printf("  Found %d jobs for '%s'", n, keyword)
	}

	all := found.list()
	rep.UniqueJobs = len(all)
	log.Printf("📊 Found %d unique jobs after deduplication", rep.UniqueJobs)

	for i := range all {
		if err := s.processCandidate(ctx, &all[i], rep); err != nil {
			return s.finish(rep, start), err
		}
	}

	if err := s.notify(ctx, rep); err != nil {
		return s.finish(rep, start), err
	}

	run := models.ScrapeRun{
		ID:        rep.RunID,
		At:        s.now(),
		JobsFound: rep.UniqueJobs,
		NewJobs:   rep.NewJobs,
		Keywords:  append([]string(nil), s.cfg.Keywords...),
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		log.Printf("⚠️ Could not log scrape session: %v", err)
	}

	s.finish(rep, start)
	log.Printf("🏁 Scraping completed. %d new jobs found (%s)", rep.NewJobs, rep)
	return rep, nil
}

func (s *Scraper) finish(rep *Report, start time.Time) *Report {
	rep.Duration = s.now().Sub(start)
	return rep
}

// searchKeyword walks the result pages of one keyword and returns how many
// in-range records it contributed.
func (s *Scraper) searchKeyword(ctx context.Context, keyword string, daysBack int, found *candidates, rep *Report) (int, error) {
	total := 0
	for page := 1; page <= s.cfg.MaxPagesPerKeyword; page++ {
		if err := s.beforeRequest(ctx); err != nil {
			return total, err
		}

		log.Printf("  Searching page %d for '%s'...", page, keyword)
		target, query := s.site.SearchRequest(keyword, page)
		resp, err := s.fetcher.Get(ctx, target, query, s.cfg.SearchTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			rep.PageErrors++
			log.Printf("  ⚠️ Error searching page %d for '%s': %v", page, keyword, err)
			return total, nil
		}
		rep.PagesFetched++

		listing, err := s.site.ParseListing(resp.Body, keyword)
		if err != nil {
			rep.PageErrors++
			log.Printf("  ⚠️ Could not parse page %d for '%s': %v", page, keyword, err)
			return total, nil
		}
		rep.ListingMisses += listing.Misses

		if len(listing.Records) == 0 {
			log.Printf("    No job cards found on page %d", page)
			return total, nil
		}

		inRange := 0
		now := s.now()
		for _, rec := range listing.Records {
			if filter.WithinDays(rec.PostedDate, daysBack, now) {
				found.add(rec)
				inRange++
			}
		}
		total += inRange
		log.Printf("    Added %d/%d jobs within %d days from page %d", inRange, len(listing.Records), daysBack, page)

		if inRange == 0 && s.cfg.StopOnStalePage {
			rep.StalePageStops++
			log.Printf("    ⏹️ Page %d has no jobs within %d days, stopping '%s'", page, daysBack, keyword)
			return total, nil
		}
	}
	return total, nil
}

// processCandidate handles one unique listing record: skip known IDs, enrich
// from the detail page, then match and store.
func (s *Scraper) processCandidate(ctx context.Context, rec *models.JobRecord, rep *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := s.store.Exists(ctx, rec.JobID)
	if err != nil {
		rep.SaveErrors++
		log.Printf("  ⚠️ Could not check job %s: %v", rec.JobID, err)
		return nil
	}
	if exists {
		rep.KnownJobs++
		log.Printf("  Job already exists: %s", models.Truncate(rec.Title, 50))
		return nil
	}

	log.Printf("  Processing new job: %s...", models.Truncate(rec.Title, 50))
	if err := s.enrich(ctx, rec, rep); err != nil {
		return err
	}
	rec.Finalize()

	decision := s.matcher.MatchRecord(*rec)
	if !decision.Matched {
		rep.Filtered++
		log.Printf("    ⏭️ Job doesn't match keywords after detailed check (%s)", decision.Reason)
		return nil
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		rep.SaveErrors++
		if errors.Is(err, models.ErrDuplicateURL) {
			log.Printf("    ❌ Duplicate URL, not saved: %s", rec.URL)
		} else {
			log.Printf("    ❌ Failed to save job %s: %v", rec.Title, err)
		}
		return nil
	}
	rep.NewJobs++
	log.Printf("    ✅ Saved new job: %s", rec.Title)
	return nil
}

// enrich merges the detail page over rec. A failed fetch keeps the listing
// values; only cancellation is returned.
func (s *Scraper) enrich(ctx context.Context, rec *models.JobRecord, rep *Report) error {
	if err := s.beforeRequest(ctx); err != nil {
		return err
	}
	resp, err := s.fetcher.Get(ctx, rec.URL, nil, s.cfg.DetailTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rep.DetailErrors++
		log.Printf("    ⚠️ Error getting job details: %v", err)
		return nil
	}
	e, err := s.site.ParseDetail(resp.Body)
	if err != nil {
		rep.DetailErrors++
		log.Printf("    ⚠️ Could not parse job details: %v", err)
		return nil
	}
	rec.Enrich(e)
	return nil
}

// notify hands every unsent record to the notifier in batches. Failed batches
// stay unsent and are retried on the next run.
func (s *Scraper) notify(ctx context.Context, rep *Report) error {
	unsent, err := s.store.Unsent(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rep.NotifyErrors++
		log.Printf("⚠️ Could not load unsent jobs: %v", err)
		return nil
	}
	if len(unsent) == 0 {
		log.Println("📭 No new jobs found")
		return nil
	}

	batches := chunk(unsent, s.batchSize())
	log.Printf("📤 Sending %d jobs in %d batches", len(unsent), len(batches))
	for i, batch := range batches {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.BatchPause); err != nil {
				return err
			}
		}
		if err := s.notifier.SendBatch(ctx, batch, i+1, len(batches)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rep.NotifyErrors++
			log.Printf("❌ Failed to send batch %d/%d: %v", i+1, len(batches), err)
			continue
		}
		rep.Notified += len(batch)
	}
	if rep.NotifyErrors == 0 {
		log.Println("✅ Successfully sent jobs")
	}
	return nil
}

func (s *Scraper) batchSize() int {
	if s.cfg.BatchSize < 1 || s.cfg.BatchSize > config.MaxBatchSize {
		return config.MaxBatchSize
	}
	return s.cfg.BatchSize
}

// beforeRequest observes the politeness delay before every request except the
// first of the run.
func (s *Scraper) beforeRequest(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.requests++
	if s.requests == 1 {
		return nil
	}
	return s.pause(ctx, s.cfg.RequestDelayMin, s.cfg.RequestDelayMax)
}

func (s *Scraper) pause(ctx context.Context, min, max time.Duration) error {
	if err := s.sleep(ctx, randomDelay(s.rnd, min, max)); err != nil {
		return fmt.Errorf("politeness delay: %w", err)
	}
	return nil
}

func chunk(recs []models.JobRecord, size int) [][]models.JobRecord {
	var out [][]models.JobRecord
	for size < len(recs) {
		recs, out = recs[size:], append(out, recs[:size:size])
	}
	if len(recs) > 0 {
		out = append(out, recs)
	}
	return out
}
