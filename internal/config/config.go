// Load envs from .env
// Load YAML config
// Override with env vars
// Validate config

package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"onlinejobs-scout/internal/filter"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "configs/config.yaml"

// Notifier kinds.
const (
	NotifierDiscord  = "discord"
	NotifierTelegram = "telegram"
	NotifierLog      = "log"
)

// Fetcher kinds.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// MaxBatchSize is the largest batch a Discord webhook accepts (10 embeds).
const MaxBatchSize = 10

type Config struct {
	//Search criteria
	Keywords        []string            `yaml:"keywords"`
	ExcludeKeywords []string            `yaml:"exclude_keywords"`
	RelatedTerms    map[string][]string `yaml:"related_terms"`
	AdvisoryMatch   bool                `yaml:"advisory_match"`
	DaysBack        int                 `yaml:"days_back"`

	//Crawling
	BaseURL            string        `yaml:"base_url"`
	UserAgent          string        `yaml:"user_agent"`
	Fetcher            string        `yaml:"fetcher"`
	Headful            bool          `yaml:"headful"`
	MaxPagesPerKeyword int           `yaml:"max_pages_per_keyword"`
	StopOnStalePage    bool          `yaml:"stop_on_stale_page"`
	RequestDelayMin    time.Duration `yaml:"request_delay_min"`
	RequestDelayMax    time.Duration `yaml:"request_delay_max"`
	KeywordDelayMin    time.Duration `yaml:"keyword_delay_min"`
	KeywordDelayMax    time.Duration `yaml:"keyword_delay_max"`
	SearchTimeout      time.Duration `yaml:"search_timeout"`
	DetailTimeout      time.Duration `yaml:"detail_timeout"`

	//Storage
	StorePath   string `yaml:"store_path"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	RedisKey    string `yaml:"redis_key"`

	//Notification
	Notifier          string        `yaml:"notifier"`
	DiscordWebhookURL string        `yaml:"discord_webhook_url"`
	TelegramToken     string        `yaml:"telegram_token"`
	TelegramChatID    int64         `yaml:"telegram_chat_id"`
	BatchSize         int           `yaml:"batch_size"`
	BatchPause        time.Duration `yaml:"batch_pause"`

	//Paths
	CookiesPath   string `yaml:"cookies_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	//Status API
	Port string `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Keywords:           append([]string(nil), filter.DefaultKeywords...),
		ExcludeKeywords:    append([]string(nil), filter.DefaultExcludeKeywords...),
		RelatedTerms:       copyTerms(filter.DefaultRelatedTerms),
		DaysBack:           5,
		BaseURL:            "https://www.onlinejobs.ph",
		Fetcher:            FetcherHTTP,
		MaxPagesPerKeyword: 10,
		StopOnStalePage:    true,
		RequestDelayMin:    1 * time.Second,
		RequestDelayMax:    3 * time.Second,
		KeywordDelayMin:    2 * time.Second,
		KeywordDelayMax:    4 * time.Second,
		SearchTimeout:      10 * time.Second,
		DetailTimeout:      15 * time.Second,
		StorePath:          "data/jobs.json",
		BatchSize:          MaxBatchSize,
		BatchPause:         1 * time.Second,
		ScreenshotDir:      "logs/screenshots",
		Port:               "8080",
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// present), .env and the process environment, in that order of precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("Warning: Could not read %s, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Notifier == "" {
		cfg.Notifier = cfg.detectNotifier()
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	if v := os.Getenv("KEYWORDS"); v != "" {
		c.Keywords = splitList(v)
	}
	if v := os.Getenv("EXCLUDE_KEYWORDS"); v != "" {
		c.ExcludeKeywords = splitList(v)
	}
	setString(&c.BaseURL, "BASE_URL")
	setString(&c.Fetcher, "FETCHER")
	setString(&c.StorePath, "STORE_PATH")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.Notifier, "NOTIFIER")
	setString(&c.DiscordWebhookURL, "DISCORD_WEBHOOK_URL")
	setString(&c.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.CookiesPath, "COOKIES_PATH")
	setString(&c.Port, "PORT")

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err))
		} else {
			c.TelegramChatID = id
		}
	}
	errs = append(errs,
		setInt(&c.DaysBack, "DEFAULT_DAYS_BACK"),
		setInt(&c.MaxPagesPerKeyword, "MAX_PAGES_PER_KEYWORD"),
		setDuration(&c.RequestDelayMin, "REQUEST_DELAY_MIN"),
		setDuration(&c.RequestDelayMax, "REQUEST_DELAY_MAX"),
	)
	return errors.Join(errs...)
}

func (c *Config) detectNotifier() string {
	switch {
	case c.DiscordWebhookURL != "":
		return NotifierDiscord
	case c.TelegramToken != "":
		return NotifierTelegram
	default:
		return NotifierLog
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(c.Keywords) == 0 {
		add("at least one keyword is required")
	}
	if c.DaysBack < 1 {
		add("days_back must be at least 1, got %d", c.DaysBack)
	}
	if c.MaxPagesPerKeyword < 1 {
		add("max_pages_per_keyword must be at least 1, got %d", c.MaxPagesPerKeyword)
	}
	if c.RequestDelayMin < 0 || c.RequestDelayMax < c.RequestDelayMin {
		add("request delay range [%s, %s] is invalid", c.RequestDelayMin, c.RequestDelayMax)
	}
	if c.KeywordDelayMin < 0 || c.KeywordDelayMax < c.KeywordDelayMin {
		add("keyword delay range [%s, %s] is invalid", c.KeywordDelayMin, c.KeywordDelayMax)
	}
	if c.SearchTimeout <= 0 || c.DetailTimeout <= 0 {
		add("search and detail timeouts must be positive")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.Fetcher != FetcherHTTP && c.Fetcher != FetcherBrowser {
		add("fetcher must be %q or %q, got %q", FetcherHTTP, FetcherBrowser, c.Fetcher)
	}
	if c.StorePath == "" && c.DatabaseURL == "" {
		add("either store_path or DATABASE_URL is required")
	}
	if c.BatchSize < 1 || c.BatchSize > MaxBatchSize {
		add("batch_size must be between 1 and %d, got %d", MaxBatchSize, c.BatchSize)
	}

	switch c.Notifier {
	case NotifierDiscord:
		if c.DiscordWebhookURL == "" {
			add("DISCORD_WEBHOOK_URL is required for the discord notifier")
		} else if !strings.HasPrefix(c.DiscordWebhookURL, "https://") {
			add("DISCORD_WEBHOOK_URL must be an https URL")
		}
	case NotifierTelegram:
		if c.TelegramToken == "" {
			add("TELEGRAM_BOT_TOKEN is required for the telegram notifier")
		}
		if c.TelegramChatID == 0 {
			add("TELEGRAM_CHAT_ID is required for the telegram notifier")
		}
	case NotifierLog:
	default:
		add("unknown notifier %q", c.Notifier)
	}

	return errors.Join(errs...)
}

func copyTerms(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// setDuration accepts Go durations ("1500ms") or plain seconds ("1.5").
func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, v)
	}
	*dst = time.Duration(secs * float64(time.Second))
	return nil
}
