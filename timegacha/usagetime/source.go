// Package usagetime abstracts the external screen-time measurement.
package usagetime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
)

// ErrUnavailable means the measurement could not be taken. Callers
// must propagate it rather than assume zero usage.
var ErrUnavailable = errors.New("usage measurement unavailable")

// Source reports a user's measured screen time for the current day.
type Source interface {
	TodaysUsageSeconds(ctx context.Context, userID string) (float64, error)
}

// SampleStore persists and aggregates raw usage samples.
type SampleStore interface {
	Insert(ctx context.Context, record *models.UsageRecord) error
	SumBetween(ctx context.Context, userID string, from, to time.Time) (float64, error)
}

// StoreSource sums the samples the platform monitor has written for
// today.
type StoreSource struct {
	samples SampleStore
}

func NewStoreSource(samples SampleStore) *StoreSource {
	return &StoreSource{samples: samples}
}

func (s *StoreSource) TodaysUsageSeconds(ctx context.Context, userID string) (float64, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	total, err := s.samples.SumBetween(ctx, userID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return total, nil
}

type timeoutSource struct {
	src     Source
	timeout time.Duration
}

// WithTimeout bounds every measurement call. An expired deadline
// surfaces as ErrUnavailable, never as a zero reading.
func WithTimeout(src Source, timeout time.Duration) Source {
	return &timeoutSource{src: src, timeout: timeout}
}

func (t *timeoutSource) TodaysUsageSeconds(ctx context.Context, userID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	seconds, err := t.src.TodaysUsageSeconds(ctx, userID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: measurement timed out after %s", ErrUnavailable, t.timeout)
		}
		return 0, err
	}
	return seconds, nil
}

// Recorder appends raw usage samples on behalf of the platform
// monitor.
type Recorder struct {
	samples SampleStore
}

func NewRecorder(samples SampleStore) *Recorder {
	return &Recorder{samples: samples}
}

func (r *Recorder) Track(ctx context.Context, userID string, seconds float64) error {
	if seconds < 0 {
		return fmt.Errorf("negative usage sample %f", seconds)
	}
	record := &models.UsageRecord{
		UserID:          userID,
		Date:            time.Now(),
		DurationSeconds: seconds,
	}
	if err := r.samples.Insert(ctx, record); err != nil {
		return fmt.Errorf("failed to store usage sample: %w", err)
	}
	return nil
}
