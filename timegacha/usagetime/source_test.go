package usagetime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSamples struct {
	records []*models.UsageRecord
	err     error
}

func (m *memSamples) Insert(_ context.Context, record *models.UsageRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memSamples) SumBetween(_ context.Context, userID string, from, to time.Time) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	total := 0.0
	for _, r := range m.records {
		if r.UserID == userID && !r.Date.Before(from) && r.Date.Before(to) {
			total += r.DurationSeconds
		}
	}
	return total, nil
}

func TestStoreSourceSumsToday(t *testing.T) {
	samples := &memSamples{records: []*models.UsageRecord{
		{UserID: "user-1", Date: time.Now(), DurationSeconds: 1800},
		{UserID: "user-1", Date: time.Now(), DurationSeconds: 600},
		{UserID: "user-1", Date: time.Now().AddDate(0, 0, -1), DurationSeconds: 7200},
		{UserID: "user-2", Date: time.Now(), DurationSeconds: 900},
	}}

	src := NewStoreSource(samples)
	total, err := src.TodaysUsageSeconds(context.Background(), "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 2400, total, 1e-9)
}

func TestStoreSourceFailureIsUnavailable(t *testing.T) {
	samples := &memSamples{err: errors.New("db down")}

	src := NewStoreSource(samples)
	_, err := src.TodaysUsageSeconds(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

type blockingSource struct{}

func (blockingSource) TodaysUsageSeconds(ctx context.Context, _ string) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	src := WithTimeout(blockingSource{}, 10*time.Millisecond)

	_, err := src.TodaysUsageSeconds(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrUnavailable, "a timed out measurement must not read as zero usage")
}

func TestRecorderTrack(t *testing.T) {
	samples := &memSamples{}
	recorder := NewRecorder(samples)

	require.NoError(t, recorder.Track(context.Background(), "user-1", 300))
	require.Len(t, samples.records, 1)
	assert.Equal(t, "user-1", samples.records[0].UserID)
	assert.InDelta(t, 300, samples.records[0].DurationSeconds, 1e-9)
}

func TestRecorderRejectsNegative(t *testing.T) {
	samples := &memSamples{}
	recorder := NewRecorder(samples)

	assert.Error(t, recorder.Track(context.Background(), "user-1", -1))
	assert.Empty(t, samples.records)
}
