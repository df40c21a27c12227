package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ScreenshotDebugger saves full-page screenshots when a fetch goes wrong.
type ScreenshotDebugger struct {
	outputDir string
}

func NewScreenshotDebugger(dir string) *ScreenshotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	return &ScreenshotDebugger{outputDir: dir}
}

// fileName builds "<name>_<timestamp>.png" with name made filesystem-safe.
func (s *ScreenshotDebugger) fileName(name string, at time.Time) string {
	safe := unsafeName.ReplaceAllString(name, "-")
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", safe, at.Format("2006-01-02_15-04-05")))
}

func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	log.Printf("📸 %s", message)

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	path := s.fileName(name, time.Now())

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return fmt.Errorf("screenshot: %w", err)
	}

	log.Printf("   Screenshot saved: %s", path)
	return nil
}
