package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onlinejobs-scout/internal/browser"
	"onlinejobs-scout/internal/config"
	"onlinejobs-scout/internal/dedup"
	"onlinejobs-scout/internal/fetch"
	"onlinejobs-scout/internal/filter"
	"onlinejobs-scout/internal/reporter"
	"onlinejobs-scout/internal/scraper"
	"onlinejobs-scout/internal/scraper/onlinejobs"
	"onlinejobs-scout/internal/telegram"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	days := flag.Int("days", 0, "how many days back to look (default from config)")
	showStats := flag.Bool("stats", false, "print store statistics and exit")
	cleanupDays := flag.Int("cleanup", 0, "delete jobs posted more than N days ago and exit")
	testNotifier := flag.Bool("test-notifier", false, "send a test notification and exit")
	dryRun := flag.Bool("dry-run", false, "log notifications instead of sending them")
	flag.Parse()

	if err := run(*configPath, *days, *showStats, *cleanupDays, *testNotifier, *dryRun); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func run(configPath string, days int, showStats bool, cleanupDays int, testNotifier, dryRun bool) error {
	//load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dryRun {
		cfg.Notifier = config.NotifierLog
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config:\n%w", err)
	}
	log.Printf("🔧 Config loaded. Keywords: %v", cfg.Keywords)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := dedup.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	switch {
	case showStats:
		return printStats(ctx, store)
	case cleanupDays > 0:
		n, err := store.Cleanup(ctx, time.Duration(cleanupDays)*24*time.Hour)
		if err != nil {
			return err
		}
		log.Printf("🧹 Removed %d jobs older than %d days", n, cleanupDays)
		return nil
	}

	dispatcher, err := newDispatcher(cfg, store, dryRun)
	if err != nil {
		return err
	}
	if testNotifier {
		if err := dispatcher.Test(ctx); err != nil {
			return err
		}
		log.Println("✅ Notifier test successful!")
		return nil
	}

	fetcher, closeFetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer closeFetcher()

	site, err := onlinejobs.New(cfg.BaseURL, time.Now)
	if err != nil {
		return err
	}
	matcher := filter.NewMatcher(cfg.Keywords, cfg.RelatedTerms, cfg.ExcludeKeywords, cfg.AdvisoryMatch)

	if days <= 0 {
		days = cfg.DaysBack
	}
	log.Printf("🚀 Starting OnlineJobs.ph scraper (%s fetcher, %s notifier)", cfg.Fetcher, cfg.Notifier)
	log.Printf("📅 Looking for jobs from the last %d days", days)

	s := scraper.New(cfg, site, fetcher, store, matcher, dispatcher)
	rep, err := s.Run(ctx, days)
	if err != nil {
		return fmt.Errorf("scrape interrupted: %w", err)
	}

	if rep.NewJobs > 0 {
		summary := reporter.Summary{TotalJobs: rep.UniqueJobs, NewJobs: rep.NewJobs, Keywords: cfg.Keywords}
		if err := dispatcher.SendSummary(ctx, summary); err != nil {
			log.Printf("⚠️ Failed to send summary: %v", err)
		}
	}

	log.Printf("📊 %s", rep)
	log.Println("🏁 Execution finished.")
	return nil
}

func newDispatcher(cfg *config.Config, store dedup.Store, dryRun bool) (*reporter.Dispatcher, error) {
	if dryRun {
		log.Println("🧪 Dry run: notifications are logged and jobs stay unsent")
		return reporter.NewDryRunDispatcher(), nil
	}

	switch cfg.Notifier {
	case config.NotifierDiscord:
		return reporter.NewDispatcher(reporter.NewDiscordSender(cfg.DiscordWebhookURL), store), nil
	case config.NotifierTelegram:
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		log.Println("🤖 Telegram Bot initialized.")
		return reporter.NewDispatcher(bot, store), nil
	default:
		return reporter.NewDispatcher(reporter.LogSender{}, store), nil
	}
}

func newFetcher(cfg *config.Config) (fetch.Fetcher, func(), error) {
	if cfg.Fetcher != config.FetcherBrowser {
		return fetch.NewClient(cfg.UserAgent), func() {}, nil
	}

	//init playwright manager
	pwManager, err := browser.NewManager(!cfg.Headful)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init Playwright: %w", err)
	}

	cookies, err := browser.LoadCookies(cfg.CookiesPath)
	if err != nil {
		log.Printf("⚠️ Could not load cookies: %v. Continuing.", err)
	} else if len(cookies) > 0 {
		log.Printf("🍪 Loaded %d cookies", len(cookies))
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = fetch.DefaultUserAgent
	}
	browserCtx, err := pwManager.NewContext(userAgent, cookies)
	if err != nil {
		pwManager.Close()
		return nil, nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		pwManager.Close()
		return nil, nil, fmt.Errorf("failed to create new page: %w", err)
	}
	log.Println("✅ Browser initialized successfully!")

	closeFn := func() {
		if err := pwManager.Close(); err != nil {
			log.Printf("⚠️ %v", err)
		}
	}
	return browser.NewFetcher(page, browser.NewScreenshotDebugger(cfg.ScreenshotDir)), closeFn, nil
}

func printStats(ctx context.Context, store dedup.Store) error {
	st, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Println("📊 Job store statistics")
	fmt.Printf("  Total jobs:        %d\n", st.Total)
	fmt.Printf("  Sent:              %d\n", st.Sent)
	fmt.Printf("  Unsent:            %d\n", st.Unsent)
	fmt.Printf("  Posted last 7 days: %d\n", st.Recent)
	if st.LastRun != nil {
		fmt.Printf("  Last run:          %s (%d found, %d new)\n",
			st.LastRun.At.Format("2006-01-02 15:04"), st.LastRun.JobsFound, st.LastRun.NewJobs)
	}
	return nil
}
