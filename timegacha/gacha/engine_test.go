package gacha

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTemplates struct {
	err error
}

func (f *fakeTemplates) RandomByRarity(_ context.Context, rarity Rarity) (*models.CardTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CardTemplate{
		ID:           int64(rarity.Weight()),
		Series:       "Test Series",
		Character:    fmt.Sprintf("Character %s", rarity),
		Rarity:       rarity.Weight(),
		AttackBonus:  rarity.AttackBonus(),
		DefenseBonus: rarity.DefenseBonus(),
		Active:       true,
	}, nil
}

type fakeDraws struct {
	batches   [][]*models.UserCard
	drawTypes []string

	// newest-first rarity weights returned by RecentRarities
	history []int
	err     error
}

func (f *fakeDraws) CreateDrawBatch(_ context.Context, cards []*models.UserCard, drawType string) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, cards)
	f.drawTypes = append(f.drawTypes, drawType)
	return nil
}

func (f *fakeDraws) CountAll(_ context.Context, _ string) (int, error) {
	return len(f.history), f.err
}

func (f *fakeDraws) RecentRarities(_ context.Context, _ string, limit int) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.history) {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeDraws) CountOwnedByRarity(_ context.Context, _ string, rarity int) (int, error) {
	n := 0
	for _, w := range f.history {
		if w == rarity {
			n++
		}
	}
	return n, f.err
}

type fixedBoost struct {
	boost float64
	err   error
}

func (f fixedBoost) CurrentBoost(_ context.Context) (float64, error) {
	return f.boost, f.err
}

type fixedQuota struct {
	remaining int
	err       error
}

func (f fixedQuota) RemainingDraws(_ context.Context, _ string) (int, error) {
	return f.remaining, f.err
}

func newTestEngine(draws *fakeDraws, quota int, seed uint64) *Engine {
	return NewEngine(&fakeTemplates{}, draws, fixedBoost{}, fixedQuota{remaining: quota}, NewSeededRNG(seed))
}

func TestDrawQuotaExhausted(t *testing.T) {
	draws := &fakeDraws{}
	engine := newTestEngine(draws, 0, 1)

	_, err := engine.Draw(context.Background(), "user-1")
	require.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Empty(t, draws.batches, "nothing should persist on a refused draw")
}

func TestDrawPersistsSingleBatch(t *testing.T) {
	draws := &fakeDraws{}
	engine := newTestEngine(draws, 5, 42)

	result, err := engine.Draw(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, result.Template)

	require.Len(t, draws.batches, 1)
	require.Len(t, draws.batches[0], 1)
	assert.Equal(t, models.DrawTypeSingle, draws.drawTypes[0])

	card := draws.batches[0][0]
	assert.Equal(t, "user-1", card.UserID)
	assert.Equal(t, 1, card.Level)
	assert.Equal(t, int64(0), card.Exp)
	assert.False(t, card.Boosted)
	assert.Equal(t, result.Template.ID, card.TemplateID)

	// The session must be released, a second draw goes through.
	_, err = engine.Draw(context.Background(), "user-1")
	require.NoError(t, err)
}

func TestDrawConcurrentSessionRefused(t *testing.T) {
	engine := newTestEngine(&fakeDraws{}, 5, 1)
	require.True(t, engine.Sessions().Acquire("user-1"))
	defer engine.Sessions().Release("user-1")

	_, err := engine.Draw(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrDrawInProgress)
}

func TestDrawMultipleQuotaCoversWholeBatch(t *testing.T) {
	draws := &fakeDraws{}
	engine := newTestEngine(draws, 9, 1)

	_, err := engine.DrawMultiple(context.Background(), "user-1", 10)
	require.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Empty(t, draws.batches)
}

func TestDrawMultipleBatchAndOrder(t *testing.T) {
	draws := &fakeDraws{}
	engine := newTestEngine(draws, 10, 7)

	results, err := engine.DrawMultiple(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, results, 10)

	require.Len(t, draws.batches, 1, "a multi draw persists as one batch")
	assert.Len(t, draws.batches[0], 10)
	assert.Equal(t, models.DrawTypeMulti, draws.drawTypes[0])

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Rarity.Weight(), results[i].Rarity.Weight(),
			"results must be sorted by rarity descending")
	}
}

func TestTenPullAlwaysContainsSROrBetter(t *testing.T) {
	const trials = 10000

	for seed := uint64(0); seed < trials; seed++ {
		draws := &fakeDraws{}
		engine := newTestEngine(draws, 10, seed)

		results, err := engine.DrawMultiple(context.Background(), "user-1", 10)
		require.NoError(t, err)

		found := false
		for _, r := range results {
			if r.Rarity.Weight() >= RaritySR.Weight() {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("seed %d: 10-pull produced no SR or better", seed)
		}
	}
}

func TestSmallBatchHasNoFloor(t *testing.T) {
	// A seed whose first rolls all land in the N band shows that
	// batches under the threshold get no forced slot.
	for seed := uint64(0); seed < 200; seed++ {
		draws := &fakeDraws{}
		engine := newTestEngine(draws, 10, seed)

		results, err := engine.DrawMultiple(context.Background(), "user-1", 3)
		require.NoError(t, err)

		allLow := true
		for _, r := range results {
			if r.Rarity.Weight() >= RaritySR.Weight() {
				allLow = false
			}
		}
		if allLow {
			return
		}
	}
	t.Fatal("expected at least one all-low 3-pull across 200 seeds")
}

func TestDrawMultipleBoostFlagCoversForcedSlot(t *testing.T) {
	// With an active boost every card of the batch is flagged boosted,
	// including a slot upgraded by the 10-pull floor.
	for seed := uint64(0); seed < 50; seed++ {
		draws := &fakeDraws{}
		engine := NewEngine(&fakeTemplates{}, draws, fixedBoost{boost: 0.5}, fixedQuota{remaining: 10}, NewSeededRNG(seed))

		results, err := engine.DrawMultiple(context.Background(), "user-1", 10)
		require.NoError(t, err)
		for i, r := range results {
			assert.True(t, r.Card.Boosted, "seed %d: card %d not flagged boosted", seed, i)
		}
	}
}

func TestDrawTemplateErrorPropagates(t *testing.T) {
	poolErr := errors.New("no active template for rarity")
	draws := &fakeDraws{}
	engine := NewEngine(&fakeTemplates{err: poolErr}, draws, fixedBoost{}, fixedQuota{remaining: 5}, NewSeededRNG(1))

	_, err := engine.Draw(context.Background(), "user-1")
	require.ErrorIs(t, err, poolErr)
	assert.Empty(t, draws.batches)
}

func TestDrawBoostErrorPropagates(t *testing.T) {
	boostErr := errors.New("mission store down")
	engine := NewEngine(&fakeTemplates{}, &fakeDraws{}, fixedBoost{err: boostErr}, fixedQuota{remaining: 5}, NewSeededRNG(1))

	_, err := engine.Draw(context.Background(), "user-1")
	assert.ErrorIs(t, err, boostErr)
}

func TestPityStatusEmptyHistory(t *testing.T) {
	engine := newTestEngine(&fakeDraws{}, 5, 1)

	status, err := engine.PityStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, status.SinceSSR)
	assert.Equal(t, 0, status.SinceSRorBetter)
	assert.Equal(t, HardPityThreshold, status.SSRThreshold)
	assert.Equal(t, SRPityThreshold, status.SRThreshold)
}

func TestPityStatusReconstruction(t *testing.T) {
	// Newest first: N, R, SR, N, SSR, N. The SSR counter stops at the
	// first SSR; the SR counter resets at the SR and keeps scanning, so
	// it ends on the lone N between the SR and the SSR.
	draws := &fakeDraws{history: []int{1, 2, 3, 1, 4, 1}}
	engine := newTestEngine(draws, 5, 1)

	status, err := engine.PityStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, status.SinceSSR)
	assert.Equal(t, 1, status.SinceSRorBetter)
}

func TestPityStatusSRCounterCapped(t *testing.T) {
	history := make([]int, 15)
	for i := range history {
		history[i] = 1
	}
	engine := newTestEngine(&fakeDraws{history: history}, 5, 1)

	status, err := engine.PityStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 15, status.SinceSSR)
	assert.Equal(t, SRPityThreshold, status.SinceSRorBetter)
}

func TestPityStatusSSRMostRecent(t *testing.T) {
	draws := &fakeDraws{history: []int{4, 1, 1, 1}}
	engine := newTestEngine(draws, 5, 1)

	status, err := engine.PityStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, status.SinceSSR)
	assert.Equal(t, 0, status.SinceSRorBetter)
}

func TestStatistics(t *testing.T) {
	draws := &fakeDraws{history: []int{1, 1, 1, 2, 2, 3, 4, 4}}
	engine := newTestEngine(draws, 5, 1)

	stats, err := engine.Statistics(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 8, stats.TotalDraws)
	assert.Equal(t, 3, stats.NCount)
	assert.Equal(t, 2, stats.RCount)
	assert.Equal(t, 1, stats.SRCount)
	assert.Equal(t, 2, stats.SSRCount)
	assert.InDelta(t, 25.0, stats.SSRRate(), 1e-9)
	assert.InDelta(t, 12.5, stats.SRRate(), 1e-9)
}

func TestStatisticsEmpty(t *testing.T) {
	stats := DrawStatistics{}
	assert.Zero(t, stats.SSRRate())
	assert.Zero(t, stats.SRRate())
}
