package browser

import (
	"fmt"
	"log"

	"github.com/playwright-community/playwright-go"
)

// Manager owns the playwright driver and one Chromium instance.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewManager starts playwright and launches Chromium.
func NewManager(headless bool) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	return &Manager{pw: pw, browser: b}, nil
}

// NewContext opens an isolated browser context with the given user agent
// and cookies.
func (m *Manager) NewContext(userAgent string, cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	opts := playwright.BrowserNewContextOptions{
		Locale:   playwright.String("en-US"),
		Viewport: &playwright.Size{Width: 1366, Height: 768},
	}
	if userAgent != "" {
		opts.UserAgent = playwright.String(userAgent)
	}

	bctx, err := m.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			bctx.Close()
			return nil, fmt.Errorf("add cookies: %w", err)
		}
		log.Printf("🍪 Added %d cookies to browser context", len(cookies))
	}
	return bctx, nil
}

func (m *Manager) Close() error {
	if err := m.browser.Close(); err != nil {
		m.pw.Stop()
		return fmt.Errorf("close browser: %w", err)
	}
	if err := m.pw.Stop(); err != nil {
		return fmt.Errorf("stop playwright: %w", err)
	}
	return nil
}
