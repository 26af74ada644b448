package gacha

const (
	baseRateSSR = 0.01
	baseRateSR  = 0.09
	baseRateR   = 0.30
	baseRateN   = 0.60

	// Boosted SSR/SR rates never exceed this ceiling regardless of the
	// mission boost in effect.
	boostedRateCap = 0.5

	// HardPityThreshold is declared configuration only: no draw path
	// enforces it. SRPityThreshold is the enforced 10-pull floor.
	HardPityThreshold = 100
	SRPityThreshold   = 10

	// Chance that the forced floor slot of a 10-pull upgrades to SSR
	// instead of SR.
	pitySSRChance = 0.1
)

type rateEntry struct {
	rarity Rarity
	rate   float64
}

// rateTable is a fixed-size table ordered by descending rarity weight,
// so the cumulative walk is deterministic and the rare tiers get first
// claim on their slice of the random line.
type rateTable [4]rateEntry

func baseRates() rateTable {
	return rateTable{
		{RaritySSR, baseRateSSR},
		{RaritySR, baseRateSR},
		{RarityR, baseRateR},
		{RarityN, baseRateN},
	}
}

// boostedRates derives the rate table for a mission boost b in (0,1].
// SSR scales with the full boost, SR with half of it, R is untouched
// and N absorbs whatever probability mass remains.
func boostedRates(b float64) rateTable {
	ssr := min(baseRateSSR*(1+b), boostedRateCap)
	sr := min(baseRateSR*(1+b*0.5), boostedRateCap)
	r := baseRateR
	n := max(0, 1-(ssr+sr+r))
	return rateTable{
		{RaritySSR, ssr},
		{RaritySR, sr},
		{RarityR, r},
		{RarityN, n},
	}
}

// pick walks the table accumulating rates; the first entry whose
// cumulative sum reaches the roll wins. Falls back to N.
func (t rateTable) pick(roll float64) Rarity {
	current := 0.0
	for _, e := range t {
		current += e.rate
		if roll <= current {
			return e.rarity
		}
	}
	return RarityN
}

func (t rateTable) sum() float64 {
	s := 0.0
	for _, e := range t {
		s += e.rate
	}
	return s
}

func (t rateTable) rate(r Rarity) float64 {
	for _, e := range t {
		if e.rarity == r {
			return e.rate
		}
	}
	return 0
}
