package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"onlinejobs-scout/internal/models"
	"onlinejobs-scout/internal/reporter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

const descriptionPreview = 200

type chattable interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot sends job batches to one chat as HTML messages.
type Bot struct {
	api    chattable
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	return NewBotWithEndpoint(token, chatID, tgbotapi.APIEndpoint)
}

// NewBotWithEndpoint talks to a custom Bot API server. endpoint uses the
// tgbotapi format, e.g. "https://api.telegram.org/bot%s/%s".
func NewBotWithEndpoint(token string, chatID int64, endpoint string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//api.Debug = true

	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func (b *Bot) Name() string { return "Telegram" }

// SendJobs posts a batch, split over several messages if it does not fit in one.
func (b *Bot) SendJobs(ctx context.Context, records []models.JobRecord, batchNum, totalBatches int) error {
	header := fmt.Sprintf("🔍 <b>New Jobs Found</b> (%d jobs)", len(records))
	if totalBatches > 1 {
		header += fmt.Sprintf(" - Batch %d/%d", batchNum, totalBatches)
	}

	blocks := make([]string, 0, len(records))
	for _, rec := range records {
		blocks = append(blocks, formatJob(rec))
	}

	for _, text := range pack(header, blocks, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.send(text); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) SendSummary(ctx context.Context, s reporter.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := fmt.Sprintf(
		"📊 <b>Scraping Summary</b>\n"+
			"Total jobs found: %d\n"+
			"New jobs: %d\n"+
			"Keywords: %s",
		s.TotalJobs, s.NewJobs, html.EscapeString(strings.Join(s.Keywords, ", ")),
	)
	return b.send(text)
}

func (b *Bot) SendTest(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.send("🧪 <b>Bot Test</b>\nOnlineJobs.ph scraper notifications are working!")
}

func (b *Bot) send(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func formatJob(rec models.JobRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔥 <b>%s</b>\n", html.EscapeString(rec.Title))
	fmt.Fprintf(&sb, "🏢 %s\n", html.EscapeString(rec.Company))
	if models.Specified(rec.Salary) {
		fmt.Fprintf(&sb, "💰 %s\n", html.EscapeString(rec.Salary))
	}
	if models.Specified(rec.JobType) {
		fmt.Fprintf(&sb, "🕒 %s\n", html.EscapeString(rec.JobType))
	}
	fmt.Fprintf(&sb, "📅 %s\n", rec.PostedDate.Format("2006-01-02 15:04"))
	if models.Specified(rec.Description) {
		fmt.Fprintf(&sb, "📝 %s\n", html.EscapeString(models.TruncateEllipsis(rec.Description, descriptionPreview)))
	}
	fmt.Fprintf(&sb, "🔖 %s\n", html.EscapeString(rec.KeywordMatched))
	fmt.Fprintf(&sb, "🔗 <a href=\"%s\">View Job</a>", html.EscapeString(rec.URL))
	return sb.String()
}

// pack joins the header and blocks into as few messages as fit in limit runes.
// Blocks are never split.
func pack(header string, blocks []string, limit int) []string {
	var out []string
	cur := header
	for _, block := range blocks {
		next := cur + "\n\n" + block
		if utf8.RuneCountInString(next) > limit && cur != header {
			out = append(out, cur)
			next = block
		}
		cur = next
	}
	return append(out, cur)
}
