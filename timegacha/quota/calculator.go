// Package quota converts measured screen-time restraint into a daily
// draw allowance.
package quota

import (
	"context"
	"fmt"
	"math"
)

const (
	baseAllowance    = 5
	penaltyFreeHours = 3

	// Finishing the day at or under this many hours earns a flat bonus.
	bonusThresholdHours = 1.5
	earlyFinishBonus    = 2

	dailyCap = 10

	// TargetHours is the restraint goal shown in progress reporting.
	TargetHours = 3.0
)

// UsageSource reports today's measured screen time. Failures propagate;
// the allowance is never computed on guessed data.
type UsageSource interface {
	TodaysUsageSeconds(ctx context.Context, userID string) (float64, error)
}

// DrawCounter reports draws already consumed today.
type DrawCounter interface {
	CountToday(ctx context.Context, userID string) (int, error)
}

type Calculator struct {
	usage UsageSource
	draws DrawCounter
}

func NewCalculator(usage UsageSource, draws DrawCounter) *Calculator {
	return &Calculator{usage: usage, draws: draws}
}

// AllowanceForUsage computes the gross daily allowance for the given
// raw usage hours: a penalty for every whole hour past the target, a
// flat bonus for finishing very low, then a hard daily cap. Both the
// penalty and the bonus look at raw hours, not at each other.
func AllowanceForUsage(hours float64) int {
	penalty := int(math.Floor(hours)) - penaltyFreeHours
	if penalty < 0 {
		penalty = 0
	}
	allowance := baseAllowance - penalty
	if allowance < 0 {
		allowance = 0
	}
	if hours <= bonusThresholdHours {
		allowance += earlyFinishBonus
	}
	if allowance > dailyCap {
		allowance = dailyCap
	}
	return allowance
}

// DrawAllowance returns the gross allowance earned by today's usage,
// before subtracting draws already spent.
func (c *Calculator) DrawAllowance(ctx context.Context, userID string) (int, error) {
	seconds, err := c.usage.TodaysUsageSeconds(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to measure today's usage: %w", err)
	}
	return AllowanceForUsage(seconds / 3600.0), nil
}

// RemainingDraws returns how many draws the user may still perform
// today. Never negative.
func (c *Calculator) RemainingDraws(ctx context.Context, userID string) (int, error) {
	allowance, err := c.DrawAllowance(ctx, userID)
	if err != nil {
		return 0, err
	}
	used, err := c.draws.CountToday(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count today's draws: %w", err)
	}
	remaining := allowance - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Progress describes how today's usage compares to the restraint goal.
type Progress struct {
	CurrentHours float64
	TargetHours  float64
	Percentage   float64
}

func (c *Calculator) Progress(ctx context.Context, userID string) (Progress, error) {
	seconds, err := c.usage.TodaysUsageSeconds(ctx, userID)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to measure today's usage: %w", err)
	}
	hours := seconds / 3600.0
	return Progress{
		CurrentHours: hours,
		TargetHours:  TargetHours,
		Percentage:   min(1.0, hours/TargetHours),
	}, nil
}

// RatingForHours grades a day's usage.
func RatingForHours(hours float64) string {
	switch {
	case hours <= 1.5:
		return "excellent"
	case hours <= 3.0:
		return "good"
	case hours <= 5.0:
		return "fair"
	default:
		return "poor"
	}
}
