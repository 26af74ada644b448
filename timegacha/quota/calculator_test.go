package quota

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lunaseul/timegacha/timegacha/usagetime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedUsage struct {
	seconds float64
	err     error
}

func (f fixedUsage) TodaysUsageSeconds(_ context.Context, _ string) (float64, error) {
	return f.seconds, f.err
}

type fixedDraws struct {
	used int
	err  error
}

func (f fixedDraws) CountToday(_ context.Context, _ string) (int, error) {
	return f.used, f.err
}

func TestAllowanceForUsage(t *testing.T) {
	tests := []struct {
		hours float64
		want  int
	}{
		{0, 7},
		{0.5, 7},
		{1.0, 7},
		{1.5, 7}, // bonus threshold is inclusive
		{1.6, 5},
		{2.0, 5},
		{3.0, 5},
		{3.9, 5}, // penalty counts whole hours only
		{4.0, 4},
		{4.5, 4},
		{5.0, 3},
		{6.0, 2},
		{7.0, 1},
		{8.0, 0},
		{10.0, 0},
		{24.0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowanceForUsage(tt.hours), "hours=%g", tt.hours)
	}
}

func TestDrawAllowance(t *testing.T) {
	calc := NewCalculator(fixedUsage{seconds: 2 * 3600}, fixedDraws{})

	allowance, err := calc.DrawAllowance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, allowance)
}

func TestRemainingDraws(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		used    int
		want    int
	}{
		{"nothing spent", 2 * 3600, 0, 5},
		{"partially spent", 2 * 3600, 2, 3},
		{"overspent never negative", 2 * 3600, 9, 0},
		{"early finish bonus", 3600, 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(fixedUsage{seconds: tt.seconds}, fixedDraws{used: tt.used})
			got, err := calc.RemainingDraws(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemainingDrawsMeasurementFailure(t *testing.T) {
	// A measurement failure must surface as an error, never as a zero
	// usage reading that would grant the maximum allowance.
	srcErr := fmt.Errorf("%w: sensor offline", usagetime.ErrUnavailable)
	calc := NewCalculator(fixedUsage{err: srcErr}, fixedDraws{})

	_, err := calc.RemainingDraws(context.Background(), "user-1")
	assert.ErrorIs(t, err, usagetime.ErrUnavailable)
}

func TestRemainingDrawsCounterFailure(t *testing.T) {
	countErr := errors.New("db down")
	calc := NewCalculator(fixedUsage{seconds: 3600}, fixedDraws{err: countErr})

	_, err := calc.RemainingDraws(context.Background(), "user-1")
	assert.ErrorIs(t, err, countErr)
}

func TestProgress(t *testing.T) {
	calc := NewCalculator(fixedUsage{seconds: 1.5 * 3600}, fixedDraws{})

	p, err := calc.Progress(context.Background(), "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, p.CurrentHours, 1e-9)
	assert.InDelta(t, TargetHours, p.TargetHours, 1e-9)
	assert.InDelta(t, 0.5, p.Percentage, 1e-9)
}

func TestProgressCapsAtFull(t *testing.T) {
	calc := NewCalculator(fixedUsage{seconds: 9 * 3600}, fixedDraws{})

	p, err := calc.Progress(context.Background(), "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Percentage, 1e-9)
}

func TestRatingForHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "excellent"},
		{1.5, "excellent"},
		{2.0, "good"},
		{3.0, "good"},
		{4.0, "fair"},
		{5.0, "fair"},
		{5.1, "poor"},
		{12, "poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingForHours(tt.hours), "hours=%g", tt.hours)
	}
}
