package gacha

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrQuotaExhausted means the caller has no draws left today. The
	// draw is refused and nothing is persisted.
	ErrQuotaExhausted = errors.New("draw quota exhausted")

	// ErrDrawInProgress means another draw for the same user is still
	// running; callers should retry once it finishes.
	ErrDrawInProgress = errors.New("draw already in progress for user")
)

// TemplateSource resolves a rarity to a concrete card template. It
// must never substitute a different rarity; an empty pool is a
// configuration error and surfaces as-is.
type TemplateSource interface {
	RandomByRarity(ctx context.Context, rarity Rarity) (*models.CardTemplate, error)
}

// DrawStore persists draw outcomes and answers draw-history queries.
// CreateDrawBatch must be atomic: all cards and their draw records
// persist together or not at all.
type DrawStore interface {
	CreateDrawBatch(ctx context.Context, cards []*models.UserCard, drawType string) error
	CountAll(ctx context.Context, userID string) (int, error)
	RecentRarities(ctx context.Context, userID string, limit int) ([]int, error)
	CountOwnedByRarity(ctx context.Context, userID string, rarity int) (int, error)
}

// BoostSource reports the mission-earned probability boost in effect.
type BoostSource interface {
	CurrentBoost(ctx context.Context) (float64, error)
}

// QuotaSource reports how many draws the user may still perform today.
type QuotaSource interface {
	RemainingDraws(ctx context.Context, userID string) (int, error)
}

// DrawResult pairs a freshly created user card with the template it
// materialized from.
type DrawResult struct {
	Card     *models.UserCard
	Template *models.CardTemplate
	Rarity   Rarity
}

type Engine struct {
	templates TemplateSource
	draws     DrawStore
	boosts    BoostSource
	quota     QuotaSource
	sessions  *SessionManager
	rng       RandomSource
}

func NewEngine(templates TemplateSource, draws DrawStore, boosts BoostSource, quota QuotaSource, rng RandomSource) *Engine {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Engine{
		templates: templates,
		draws:     draws,
		boosts:    boosts,
		quota:     quota,
		sessions:  NewSessionManager(),
		rng:       rng,
	}
}

// Sessions exposes the per-user session manager so the process can run
// its cleanup routine.
func (e *Engine) Sessions() *SessionManager {
	return e.sessions
}

// Draw performs a single draw for the user: quota check, rarity roll
// (boosted when a mission boost is active), template resolution and a
// transactional card + draw record write.
func (e *Engine) Draw(ctx context.Context, userID string) (*DrawResult, error) {
	if !e.sessions.Acquire(userID) {
		return nil, ErrDrawInProgress
	}
	defer e.sessions.Release(userID)

	remaining, err := e.quota.RemainingDraws(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check draw quota: %w", err)
	}
	if remaining < 1 {
		return nil, ErrQuotaExhausted
	}

	boost, err := e.boosts.CurrentBoost(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission boost: %w", err)
	}

	result, err := e.materialize(ctx, userID, e.rollRarity(boost), boost > 0)
	if err != nil {
		return nil, err
	}

	if err := e.draws.CreateDrawBatch(ctx, []*models.UserCard{result.Card}, models.DrawTypeSingle); err != nil {
		return nil, fmt.Errorf("failed to record draw: %w", err)
	}
	return result, nil
}

// DrawMultiple performs count draws as one batch. For batches of 10 or
// more the last slot is forced to SR-or-better when the earlier slots
// produced nothing at or above SR; the forced pick upgrades to SSR
// with a small probability. All cards and records persist in a single
// transaction and the result is sorted by rarity weight descending.
func (e *Engine) DrawMultiple(ctx context.Context, userID string, count int) ([]*DrawResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("invalid draw count %d", count)
	}
	if !e.sessions.Acquire(userID) {
		return nil, ErrDrawInProgress
	}
	defer e.sessions.Release(userID)

	remaining, err := e.quota.RemainingDraws(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check draw quota: %w", err)
	}
	if remaining < count {
		return nil, ErrQuotaExhausted
	}

	boost, err := e.boosts.CurrentBoost(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission boost: %w", err)
	}

	results := make([]*DrawResult, 0, count)
	for i := 0; i < count; i++ {
		rarity := e.rollRarity(boost)
		boosted := boost > 0

		if count >= SRPityThreshold && i == count-1 && !containsHighRarity(results) {
			// 10-pull floor: the guarantee replaces the tier roll only;
			// template resolution and the boosted flag stay the same.
			if e.rng.Float64() < pitySSRChance {
				rarity = RaritySSR
			} else {
				rarity = RaritySR
			}
		}

		result, err := e.materialize(ctx, userID, rarity, boosted)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	cards := make([]*models.UserCard, len(results))
	for i, r := range results {
		cards[i] = r.Card
	}
	if err := e.draws.CreateDrawBatch(ctx, cards, models.DrawTypeMulti); err != nil {
		return nil, fmt.Errorf("failed to record draws: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rarity.Weight() > results[j].Rarity.Weight()
	})
	return results, nil
}

func (e *Engine) rollRarity(boost float64) Rarity {
	roll := e.rng.Float64()
	if boost > 0 {
		return boostedRates(boost).pick(roll)
	}
	return baseRates().pick(roll)
}

func (e *Engine) materialize(ctx context.Context, userID string, rarity Rarity, boosted bool) (*DrawResult, error) {
	template, err := e.templates.RandomByRarity(ctx, rarity)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	card := &models.UserCard{
		UserID:     userID,
		TemplateID: template.ID,
		Obtained:   now,
		Boosted:    boosted,
		Level:      1,
		Exp:        0,
	}
	return &DrawResult{Card: card, Template: template, Rarity: rarity}, nil
}

func containsHighRarity(results []*DrawResult) bool {
	for _, r := range results {
		if r.Rarity.Weight() >= RaritySR.Weight() {
			return true
		}
	}
	return false
}

// PityStatus reports how many draws the user has gone without hitting
// SSR, and without hitting SR-or-better. Advisory telemetry: only the
// 10-pull floor gates an outcome.
type PityStatus struct {
	SinceSSR        int
	SinceSRorBetter int
	SSRThreshold    int
	SRThreshold     int
}

// PityStatus reconstructs the pity counters from the user's draw
// history, newest first. The SSR counter stops at the first SSR; the
// SR counter resets to zero at every tier at or above SR along the way
// and is capped at the floor threshold.
func (e *Engine) PityStatus(ctx context.Context, userID string) (PityStatus, error) {
	status := PityStatus{SSRThreshold: HardPityThreshold, SRThreshold: SRPityThreshold}

	weights, err := e.draws.RecentRarities(ctx, userID, 0)
	if err != nil {
		return status, fmt.Errorf("failed to load draw history: %w", err)
	}

	for _, w := range weights {
		if RarityFromWeight(w) == RaritySSR {
			break
		}
		status.SinceSSR++
		if w >= RaritySR.Weight() {
			status.SinceSRorBetter = 0
		} else {
			status.SinceSRorBetter++
		}
	}
	if status.SinceSRorBetter > SRPityThreshold {
		status.SinceSRorBetter = SRPityThreshold
	}
	return status, nil
}

// DrawStatistics aggregates a user's lifetime draw outcomes.
type DrawStatistics struct {
	TotalDraws int
	NCount     int
	RCount     int
	SRCount    int
	SSRCount   int
}

func (s DrawStatistics) SSRRate() float64 {
	if s.TotalDraws == 0 {
		return 0
	}
	return float64(s.SSRCount) / float64(s.TotalDraws) * 100
}

func (s DrawStatistics) SRRate() float64 {
	if s.TotalDraws == 0 {
		return 0
	}
	return float64(s.SRCount) / float64(s.TotalDraws) * 100
}

// Statistics gathers draw totals and per-rarity owned counts with the
// count queries running in parallel.
func (e *Engine) Statistics(ctx context.Context, userID string) (DrawStatistics, error) {
	var stats DrawStatistics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := e.draws.CountAll(gctx, userID)
		stats.TotalDraws = total
		return err
	})
	counts := [4]int{}
	for i, rarity := range []Rarity{RarityN, RarityR, RaritySR, RaritySSR} {
		g.Go(func() error {
			n, err := e.draws.CountOwnedByRarity(gctx, userID, rarity.Weight())
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return DrawStatistics{}, fmt.Errorf("failed to gather draw statistics: %w", err)
	}

	stats.NCount, stats.RCount, stats.SRCount, stats.SSRCount = counts[0], counts[1], counts[2], counts[3]
	return stats, nil
}

// ProbabilityDescription renders the current rate table and pity
// thresholds for display.
func (e *Engine) ProbabilityDescription() string {
	rates := baseRates()
	desc := "Current draw rates:\n"
	for _, rarity := range AllRarities {
		desc += fmt.Sprintf("%s: %.2f%%\n", rarity, rates.rate(rarity)*100)
	}
	desc += fmt.Sprintf("\nPity rules:\nevery %d draws guarantee SR or better\nevery %d draws guarantee SSR", SRPityThreshold, HardPityThreshold)
	return desc
}
