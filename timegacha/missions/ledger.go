package missions

import (
	"context"
	"fmt"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
)

const (
	// A mission type cannot be completed twice within this window,
	// measured from the previous completion rather than from midnight.
	completionCooldown = 24 * time.Hour

	// Ceiling on the summed boost of a day's completions.
	maxDailyBoost = 1.0
)

// RecordStore persists and queries mission completions.
type RecordStore interface {
	Insert(ctx context.Context, record *models.MissionRecord) error
	CountSince(ctx context.Context, missionType string, since time.Time) (int, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*models.MissionRecord, error)
}

// Ledger tracks completed missions and derives the aggregate draw-odds
// boost they earn.
type Ledger struct {
	store RecordStore
}

func NewLedger(store RecordStore) *Ledger {
	return &Ledger{store: store}
}

// CanComplete reports whether the mission type is out of cooldown.
func (l *Ledger) CanComplete(ctx context.Context, t Type) (bool, error) {
	if !validType(t) {
		return false, fmt.Errorf("unknown mission type %q", t)
	}
	count, err := l.store.CountSince(ctx, string(t), time.Now().Add(-completionCooldown))
	if err != nil {
		return false, fmt.Errorf("failed to check mission cooldown: %w", err)
	}
	return count == 0, nil
}

// Complete records a completion of the mission type. Returns false
// with no side effect when the type is still in cooldown.
func (l *Ledger) Complete(ctx context.Context, t Type) (bool, error) {
	ok, err := l.CanComplete(ctx, t)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	record := &models.MissionRecord{
		MissionType: string(t),
		Boost:       t.Boost(),
		CompletedAt: time.Now(),
	}
	if err := l.store.Insert(ctx, record); err != nil {
		return false, fmt.Errorf("failed to record mission completion: %w", err)
	}
	return true, nil
}

// CurrentBoost sums the boosts of everything completed today (local
// midnight-aligned), clamped at 100%.
func (l *Ledger) CurrentBoost(ctx context.Context) (float64, error) {
	records, err := l.todayRecords(ctx)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, r := range records {
		total += r.Boost
	}
	return min(maxDailyBoost, total), nil
}

// CompletedToday lists the mission types completed today.
func (l *Ledger) CompletedToday(ctx context.Context) ([]Type, error) {
	records, err := l.todayRecords(ctx)
	if err != nil {
		return nil, err
	}
	types := make([]Type, 0, len(records))
	for _, r := range records {
		t := Type(r.MissionType)
		if validType(t) {
			types = append(types, t)
		}
	}
	return types, nil
}

// AvailableMissions lists every mission type not currently in cooldown.
func (l *Ledger) AvailableMissions(ctx context.Context) ([]Type, error) {
	available := make([]Type, 0, len(AllTypes))
	for _, t := range AllTypes {
		ok, err := l.CanComplete(ctx, t)
		if err != nil {
			return nil, err
		}
		if ok {
			available = append(available, t)
		}
	}
	return available, nil
}

func (l *Ledger) todayRecords(ctx context.Context) ([]*models.MissionRecord, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	records, err := l.store.ListBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load today's missions: %w", err)
	}
	return records, nil
}
