package reporter

import (
	"context"
	"log"

	"onlinejobs-scout/internal/models"
)

// LogSender writes notifications to the log instead of a channel. Used for
// dry runs and when no channel is configured.
type LogSender struct{}

func (LogSender) Name() string { return "log" }

func (LogSender) SendJobs(_ context.Context, records []models.JobRecord, batchNum, totalBatches int) error {
	log.Printf("📋 Batch %d/%d (%d jobs)", batchNum, totalBatches, len(records))
	for _, rec := range records {
		log.Printf("  • %s | %s | %s | %s", rec.Title, rec.Company, rec.Salary, rec.URL)
	}
	return nil
}

func (LogSender) SendSummary(_ context.Context, s Summary) error {
	log.Printf("📊 Summary: %d jobs found, %d new, keywords %v", s.TotalJobs, s.NewJobs, s.Keywords)
	return nil
}

func (LogSender) SendTest(context.Context) error {
	log.Println("🧪 Log notifier is working")
	return nil
}

type nopMarker struct{}

func (nopMarker) MarkSent(context.Context, string) error { return nil }

// NewDryRunDispatcher logs every batch and leaves records unsent.
func NewDryRunDispatcher() *Dispatcher {
	return NewDispatcher(LogSender{}, nopMarker{})
}
