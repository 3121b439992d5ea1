package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries   = 5
	defaultInitialDelay = 2 * time.Second
)

// Coordinator wraps a Reader with quota-aware retries and request pacing.
// Rate-limited reads are retried with exponential backoff (2s, 4s, 8s, 16s,
// 32s); any other failure surfaces immediately.
type Coordinator struct {
	reader     Reader
	logger     *slog.Logger
	limiter    *rate.Limiter
	maxRetries int
	initial    time.Duration

	// sleep is swappable in tests so retry timing can be asserted without
	// waiting on the wall clock.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCoordinator paces reads at qps with small bursts allowed.
func NewCoordinator(reader Reader, logger *slog.Logger, qps float64) *Coordinator {
	return &Coordinator{
		reader:     reader,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(qps), 2),
		maxRetries: defaultMaxRetries,
		initial:    defaultInitialDelay,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Metadata fetches spreadsheet metadata with the same retry policy as value
// reads.
func (c *Coordinator) Metadata(ctx context.Context, spreadsheetID string) (*Metadata, error) {
	var md *Metadata
	err := c.withRetry(ctx, "metadata", func() error {
		var err error
		md, err = c.reader.Metadata(ctx, spreadsheetID)
		return err
	})
	return md, err
}

// FetchRanges batch-reads the given A1 ranges, keyed by requested range.
func (c *Coordinator) FetchRanges(ctx context.Context, spreadsheetID string, ranges []string) (map[string][][]Value, error) {
	var values map[string][][]Value
	err := c.withRetry(ctx, "batch_get", func() error {
		var err error
		values, err = c.reader.BatchGetValues(ctx, spreadsheetID, ranges)
		return err
	})
	return values, err
}

// FetchSingle reads one range and returns its rows.
func (c *Coordinator) FetchSingle(ctx context.Context, spreadsheetID, rangeRef string) ([][]Value, error) {
	values, err := c.FetchRanges(ctx, spreadsheetID, []string{rangeRef})
	if err != nil {
		return nil, err
	}
	return values[rangeRef], nil
}

func (c *Coordinator) withRetry(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	defer func() { fetchDuration.Observe(time.Since(start).Seconds()) }()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initial
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			fetchRequests.WithLabelValues("success").Inc()
			return nil
		}
		if !errors.Is(err, ErrRateLimited) {
			fetchRequests.WithLabelValues("error").Inc()
			return err
		}
		if attempt >= c.maxRetries {
			fetchRequests.WithLabelValues("rate_limited").Inc()
			return fmt.Errorf("giving up after %d retries: %w", c.maxRetries, err)
		}

		delay := bo.NextBackOff()
		rateLimitRetries.Inc()
		c.logger.Warn("sheets read rate limited, backing off",
			slog.String("op", op),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay))
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}
