// Fetch one search page and show what the listing parser and matcher make of it
// Use when the site layout changes and runs start finding nothing

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"onlinejobs-scout/internal/browser"
	"onlinejobs-scout/internal/config"
	"onlinejobs-scout/internal/fetch"
	"onlinejobs-scout/internal/filter"
	"onlinejobs-scout/internal/scraper/onlinejobs"

	"github.com/PuerkitoBio/goquery"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	keyword := flag.String("keyword", "automation", "keyword to search")
	page := flag.Int("page", 1, "results page")
	useBrowser := flag.Bool("browser", false, "fetch with headless Chromium instead of HTTP")
	dump := flag.String("dump", "", "write the raw page to this file")
	flag.Parse()

	if err := run(*configPath, *keyword, *page, *useBrowser, *dump); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func run(configPath, keyword string, page int, useBrowser bool, dump string) error {
	fmt.Println("🔧 Checking config...")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("⚠️ Config issues:\n%v\n", err)
	} else {
		fmt.Println("✅ Config is valid")
	}

	site, err := onlinejobs.New(cfg.BaseURL, time.Now)
	if err != nil {
		return fmt.Errorf("bad base URL: %w", err)
	}

	var fetcher fetch.Fetcher = fetch.NewClient(cfg.UserAgent)
	if useBrowser {
		pm, err := browser.NewManager(!cfg.Headful)
		if err != nil {
			return fmt.Errorf("start playwright: %w", err)
		}
		defer func() {
			if err := pm.Close(); err != nil {
				log.Printf("⚠️ Failed to stop Playwright: %v", err)
			}
		}()
		fmt.Println("✅ Playwright started")

		cookies, err := browser.LoadCookies(cfg.CookiesPath)
		if err != nil {
			fmt.Printf("⚠️ No cookies: %v\n", err)
		} else {
			fmt.Printf("✅ Loaded %d cookies\n", len(cookies))
		}

		browserCtx, err := pm.NewContext(cfg.UserAgent, cookies)
		if err != nil {
			return fmt.Errorf("create browser context: %w", err)
		}
		p, err := browserCtx.NewPage()
		if err != nil {
			return fmt.Errorf("create page: %w", err)
		}
		fetcher = browser.NewFetcher(p, browser.NewScreenshotDebugger(cfg.ScreenshotDir))
	}

	target, query := site.SearchRequest(keyword, page)
	fmt.Printf("🔍 Fetching %s?%s\n", target, query.Encode())
	resp, err := fetcher.Get(context.Background(), target, query, cfg.SearchTimeout)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	fmt.Println("\n=== RESPONSE ===")
	fmt.Printf("Status: %d\nFinal URL: %s\nBytes: %d\n", resp.Status, resp.FinalURL, len(resp.Body))
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body)); err == nil {
		fmt.Printf("Title: %s\n", doc.Find("title").First().Text())
		for _, sel := range []string{`a[href*="/jobseekers/job/"]`, ".jobpost-cat-box", ".job-item", "[data-job-id]", "article"} {
			fmt.Printf("  %-32s %d\n", sel, doc.Find(sel).Length())
		}
	}
	if dump != "" {
		if err := os.WriteFile(dump, resp.Body, 0644); err != nil {
			log.Printf("⚠️ Could not write %s: %v", dump, err)
		} else {
			fmt.Printf("📁 Page saved to %s\n", dump)
		}
	}

	listing, err := site.ParseListing(resp.Body, keyword)
	if err != nil {
		return fmt.Errorf("parse listing: %w", err)
	}

	matcher := filter.NewMatcher(cfg.Keywords, cfg.RelatedTerms, cfg.ExcludeKeywords, cfg.AdvisoryMatch)
	fmt.Printf("\n=== FOUND %d JOBS (%d links skipped) ===\n", len(listing.Records), listing.Misses)
	kept := 0
	for i, rec := range listing.Records {
		d := matcher.MatchRecord(rec)
		within := filter.WithinDays(rec.PostedDate, cfg.DaysBack, time.Now())
		fmt.Printf("\n%d. %s\n", i+1, rec.Title)
		fmt.Printf("   JOB_ID: %s\n   URL: %s\n   Posted: %s (within %d days: %v)\n",
			rec.JobID, rec.URL, rec.PostedDate.Format("2006-01-02 15:04"), cfg.DaysBack, within)
		fmt.Printf("   Company: %q Contact: %q Type: %q\n", rec.Company, rec.ContactPerson, rec.JobType)
		if d.Matched && within {
			kept++
			fmt.Printf("   KEEP: %s %q\n", d.Reason, d.Term)
		} else {
			fmt.Printf("   SKIP: %s %q\n", d.Reason, d.Term)
		}
	}

	fmt.Println("\n=== SUMMARY ===")
	fmt.Printf("Total records: %d\nWould keep: %d\nWould skip: %d\n", len(listing.Records), kept, len(listing.Records)-kept)
	return nil
}
