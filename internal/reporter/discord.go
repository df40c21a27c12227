package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"onlinejobs-scout/internal/models"
)

const (
	discordUsername  = "OnlineJobs.ph Bot"
	discordAvatarURL = "https://www.onlinejobs.ph/assets/img/logo.png"

	colorJob     = 0x00ff00
	colorSummary = 0x0099ff

	embedTitleLimit = 256
	fieldValueLimit = 100
)

type discordPayload struct {
	Content   string         `json:"content,omitempty"`
	Username  string         `json:"username,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Embeds    []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// DiscordSender posts embeds to a Discord webhook.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (d *DiscordSender) Name() string { return "Discord" }

func (d *DiscordSender) SendJobs(ctx context.Context, records []models.JobRecord, batchNum, totalBatches int) error {
	content := fmt.Sprintf("🔍 **New Jobs Found** (%d jobs)", len(records))
	if totalBatches > 1 {
		content += fmt.Sprintf(" - Batch %d/%d", batchNum, totalBatches)
	}

	embeds := make([]discordEmbed, 0, len(records))
	for _, rec := range records {
		embeds = append(embeds, d.jobEmbed(rec))
	}

	return d.post(ctx, discordPayload{
		Content:   content,
		Username:  discordUsername,
		AvatarURL: discordAvatarURL,
		Embeds:    embeds,
	})
}

func (d *DiscordSender) jobEmbed(rec models.JobRecord) discordEmbed {
	fields := []discordField{
		{Name: "Company", Value: orNotSpecified(rec.Company), Inline: true},
		{Name: "Job Type", Value: orNotSpecified(rec.JobType), Inline: true},
		{Name: "Keyword Match", Value: orNotSpecified(rec.KeywordMatched), Inline: true},
	}
	if models.Specified(rec.Salary) {
		fields = append(fields, discordField{Name: "Salary", Value: models.Truncate(rec.Salary, fieldValueLimit), Inline: true})
	}
	if models.Specified(rec.ContactPerson) && rec.ContactPerson != rec.Company {
		fields = append(fields, discordField{Name: "Contact", Value: models.Truncate(rec.ContactPerson, fieldValueLimit), Inline: true})
	}

	e := discordEmbed{
		Title:     models.Truncate(rec.Title, embedTitleLimit),
		URL:       rec.URL,
		Color:     colorJob,
		Fields:    fields,
		Footer:    &discordFooter{Text: "OnlineJobs.ph • Posted: " + rec.PostedDate.Format("2006-01-02 15:04")},
		Timestamp: d.now().UTC().Format(time.RFC3339),
	}
	if models.Specified(rec.Description) {
		e.Description = models.TruncateEllipsis(rec.Description, models.MaxDescriptionLen)
	}
	return e
}

func (d *DiscordSender) SendSummary(ctx context.Context, s Summary) error {
	keywords := strings.Join(s.Keywords, ", ")
	if keywords == "" {
		keywords = "-"
	}
	return d.post(ctx, discordPayload{
		Username: discordUsername,
		Embeds: []discordEmbed{{
			Title: "📊 Scraping Summary",
			Color: colorSummary,
			Fields: []discordField{
				{Name: "Total Jobs Found", Value: fmt.Sprint(s.TotalJobs), Inline: true},
				{Name: "New Jobs", Value: fmt.Sprint(s.NewJobs), Inline: true},
				{Name: "Keywords Searched", Value: keywords},
			},
			Footer:    &discordFooter{Text: "OnlineJobs.ph Scraper"},
			Timestamp: d.now().UTC().Format(time.RFC3339),
		}},
	})
}

func (d *DiscordSender) SendTest(ctx context.Context) error {
	return d.post(ctx, discordPayload{
		Content:  "Testing webhook connection...",
		Username: discordUsername,
		Embeds: []discordEmbed{{
			Title:       "🧪 Webhook Test",
			Description: "OnlineJobs.ph scraper webhook is working!",
			Color:       colorJob,
			Timestamp:   d.now().UTC().Format(time.RFC3339),
		}},
	})
}

func (d *DiscordSender) post(ctx context.Context, payload discordPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func orNotSpecified(v string) string {
	if !models.Specified(v) {
		return models.NotSpecified
	}
	return v
}
