// Package reporter turns stored job records into notifications and records
// which ones were delivered.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"log"

	"onlinejobs-scout/internal/config"
	"onlinejobs-scout/internal/models"
)

// Summary is the end-of-run message.
type Summary struct {
	TotalJobs int
	NewJobs   int
	Keywords  []string
}

// Sender delivers formatted messages on one channel.
type Sender interface {
	Name() string
	SendJobs(ctx context.Context, records []models.JobRecord, batchNum, totalBatches int) error
	SendSummary(ctx context.Context, s Summary) error
	SendTest(ctx context.Context) error
}

// Marker flags a job as delivered.
type Marker interface {
	MarkSent(ctx context.Context, jobID string) error
}

// Dispatcher sends batches through a Sender and marks every record of a
// delivered batch as sent.
type Dispatcher struct {
	sender Sender
	marker Marker
}

func NewDispatcher(sender Sender, marker Marker) *Dispatcher {
	return &Dispatcher{sender: sender, marker: marker}
}

// SendBatch delivers one batch. Records are only marked once the channel has
// accepted the whole batch.
func (d *Dispatcher) SendBatch(ctx context.Context, records []models.JobRecord, batchNum, totalBatches int) error {
	if len(records) == 0 {
		return nil
	}
	if len(records) > config.MaxBatchSize {
		return fmt.Errorf("batch %d has %d records, limit is %d", batchNum, len(records), config.MaxBatchSize)
	}

	if err := d.sender.SendJobs(ctx, records, batchNum, totalBatches); err != nil {
		return fmt.Errorf("%s batch %d/%d: %w", d.sender.Name(), batchNum, totalBatches, err)
	}
	log.Printf("📨 Sent batch %d/%d to %s (%d jobs)", batchNum, totalBatches, d.sender.Name(), len(records))

	var errs []error
	for _, rec := range records {
		if err := d.marker.MarkSent(ctx, rec.JobID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("mark batch %d sent: %w", batchNum, err)
	}
	return nil
}

// SendSummary posts the run summary.
func (d *Dispatcher) SendSummary(ctx context.Context, s Summary) error {
	if err := d.sender.SendSummary(ctx, s); err != nil {
		return fmt.Errorf("%s summary: %w", d.sender.Name(), err)
	}
	return nil
}

// Test posts a connectivity check message.
func (d *Dispatcher) Test(ctx context.Context) error {
	if err := d.sender.SendTest(ctx); err != nil {
		return fmt.Errorf("%s test: %w", d.sender.Name(), err)
	}
	return nil
}
