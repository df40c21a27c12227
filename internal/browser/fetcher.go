package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"onlinejobs-scout/internal/fetch"

	"github.com/playwright-community/playwright-go"
)

// ErrChallenge is returned when an anti-bot interstitial never cleared.
var ErrChallenge = errors.New("anti-bot challenge not cleared")

const defaultChallengeWait = 7 * time.Second

// Fetcher loads pages in a real Chromium tab. It satisfies fetch.Fetcher and
// is used when plain HTTP requests get blocked.
type Fetcher struct {
	page          playwright.Page
	shots         *ScreenshotDebugger
	challengeWait time.Duration
	scroll        bool
}

// NewFetcher wraps a page. shots may be nil to disable debug screenshots.
func NewFetcher(page playwright.Page, shots *ScreenshotDebugger) *Fetcher {
	return &Fetcher{
		page:          page,
		shots:         shots,
		challengeWait: defaultChallengeWait,
		scroll:        true,
	}
}

func (f *Fetcher) Get(ctx context.Context, rawURL string, query url.Values, timeout time.Duration) (*fetch.Response, error) {
	target, err := fetch.BuildURL(rawURL, query)
	if err != nil {
		return nil, &fetch.TransportError{URL: rawURL, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &fetch.TransportError{URL: target, Err: err}
	}

	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateDomcontentloaded}
	if timeout > 0 {
		opts.Timeout = playwright.Float(float64(timeout.Milliseconds()))
	}

	resp, err := f.page.Goto(target, opts)
	if err != nil {
		return nil, &fetch.TransportError{URL: target, Timeout: errors.Is(err, playwright.ErrTimeout), Err: err}
	}

	status := 0
	if resp != nil {
		status = resp.Status()
	}

	title, _ := f.page.Title()
	if isChallenge(title) {
		log.Println("    🛡️ Cloudflare challenge detected. Waiting...")
		f.capture("cloudflare-challenge", "🚨 OnlineJobs: Cloudflare challenge detected")
		if err := randomPause(ctx, f.challengeWait, f.challengeWait+time.Second); err != nil {
			return nil, &fetch.TransportError{URL: target, Err: err}
		}
		if title, _ := f.page.Title(); isChallenge(title) {
			log.Println("❌ Cloudflare challenge failed.")
			f.capture("cloudflare-blocked", "🚨 OnlineJobs: still blocked after waiting")
			return nil, &fetch.TransportError{URL: target, Status: status, Err: ErrChallenge}
		}
		// the challenge redirected to the real page
		status = 200
	}

	if status != 0 && (status < 200 || status > 299) {
		f.capture(fmt.Sprintf("status-%d", status), fmt.Sprintf("⚠️ HTTP %d for %s", status, target))
		return nil, &fetch.TransportError{URL: target, Status: status, Err: fmt.Errorf("status %d", status)}
	}

	if f.scroll {
		if err := humanScroll(ctx, f.page); err != nil && ctx.Err() != nil {
			return nil, &fetch.TransportError{URL: target, Err: ctx.Err()}
		}
	}

	html, err := f.page.Content()
	if err != nil {
		return nil, &fetch.TransportError{URL: target, Err: fmt.Errorf("read content: %w", err)}
	}

	return &fetch.Response{Status: status, Body: []byte(html), FinalURL: f.page.URL()}, nil
}

func (f *Fetcher) capture(name, message string) {
	if f.shots == nil {
		return
	}
	f.shots.CaptureAndLog(f.page, "onlinejobs-"+name, message)
}

func isChallenge(title string) bool {
	for _, marker := range []string{"Attention Required", "Just a moment", "Cloudflare"} {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}
