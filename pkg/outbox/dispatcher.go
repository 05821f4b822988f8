package outbox

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const (
	backoffBase = 2 * time.Second
	backoffCap  = 5 * time.Minute
	// backoffJitter is the maximum fraction added on top of the computed
	// delay so that retries from a burst of failures spread out.
	backoffJitter = 0.2
)

// Backoff returns the delay before the next delivery attempt for an entry
// that has already failed retryCount times: exponential from backoffBase,
// capped at backoffCap, with up to backoffJitter random spread.
func Backoff(retryCount int) time.Duration {
	delay := backoffBase
	for i := 0; i < retryCount && delay < backoffCap; i++ {
		delay *= 2
	}
	if delay > backoffCap {
		delay = backoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(float64(delay) * backoffJitter)))
	return delay + jitter
}

// SweepResult counts the outcomes of one dispatcher sweep.
type SweepResult struct {
	Published int
	Failed    int
}

// Dispatcher drains pending outbox entries to a Publisher. A failing entry
// never blocks its siblings: each failure is recorded with a new retry time
// and the sweep moves on.
type Dispatcher struct {
	store     Store
	publisher Publisher
	batchSize int
	logger    *slog.Logger
	now       func() time.Time

	publishedCounter metric.Int64Counter
	failedCounter    metric.Int64Counter
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBatchSize overrides the sweep batch size.
func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithClock overrides the dispatcher's clock.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// WithMeter registers delivery counters on the given meter.
func WithMeter(meter metric.Meter) DispatcherOption {
	return func(d *Dispatcher) {
		d.publishedCounter, _ = meter.Int64Counter("outbox.published",
			metric.WithDescription("Outbox entries delivered to the event bus"))
		d.failedCounter, _ = meter.Int64Counter("outbox.failed",
			metric.WithDescription("Outbox delivery attempts that failed"))
	}
}

// NewDispatcher creates a dispatcher over store and publisher.
func NewDispatcher(store Store, publisher Publisher, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		publisher: publisher,
		batchSize: DefaultBatchSize,
		logger:    logger,
		now:       time.Now,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Sweep fetches one batch of due entries and attempts delivery for each.
func (d *Dispatcher) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	entries, err := d.store.FetchPending(ctx, d.batchSize, d.now())
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		if err := d.publisher.Publish(ctx, entry.Event); err != nil {
			result.Failed++
			if d.failedCounter != nil {
				d.failedCounter.Add(ctx, 1)
			}
			retryAt := d.now().Add(Backoff(entry.RetryCount))
			d.logger.Warn("outbox delivery failed",
				"entry_id", entry.EntryID,
				"event_id", entry.Event.ID,
				"retry_count", entry.RetryCount+1,
				"next_retry_at", retryAt,
				"error", err)
			if markErr := d.store.MarkFailed(ctx, entry.EntryID, err.Error(), retryAt); markErr != nil {
				d.logger.Error("outbox mark failed", "entry_id", entry.EntryID, "error", markErr)
			}
			continue
		}
		result.Published++
		if d.publishedCounter != nil {
			d.publishedCounter.Add(ctx, 1)
		}
		if markErr := d.store.MarkPublished(ctx, entry.EntryID); markErr != nil {
			d.logger.Error("outbox mark published", "entry_id", entry.EntryID, "error", markErr)
		}
	}
	return result, nil
}

// Run sweeps on the given interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.Sweep(ctx); err != nil {
				d.logger.Error("outbox sweep", "error", err)
			}
		}
	}
}
