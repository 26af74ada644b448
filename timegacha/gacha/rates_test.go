package gacha

import (
	"math"
	"testing"
)

func TestBaseRatesSumToOne(t *testing.T) {
	if diff := math.Abs(baseRates().sum() - 1.0); diff > 1e-9 {
		t.Fatalf("base rates sum off by %g", diff)
	}
}

func TestBoostedRates(t *testing.T) {
	for _, b := range []float64{0.1, 0.3, 0.5, 0.6, 0.8, 1.0} {
		rates := boostedRates(b)

		if diff := math.Abs(rates.sum() - 1.0); diff > 1e-9 {
			t.Errorf("boost %.2f: rates sum off by %g", b, diff)
		}
		if ssr := rates.rate(RaritySSR); ssr > boostedRateCap {
			t.Errorf("boost %.2f: SSR rate %g above cap", b, ssr)
		}
		if sr := rates.rate(RaritySR); sr > boostedRateCap {
			t.Errorf("boost %.2f: SR rate %g above cap", b, sr)
		}

		wantSSR := math.Min(baseRateSSR*(1+b), boostedRateCap)
		if got := rates.rate(RaritySSR); math.Abs(got-wantSSR) > 1e-9 {
			t.Errorf("boost %.2f: SSR rate = %g, want %g", b, got, wantSSR)
		}
		wantSR := math.Min(baseRateSR*(1+b*0.5), boostedRateCap)
		if got := rates.rate(RaritySR); math.Abs(got-wantSR) > 1e-9 {
			t.Errorf("boost %.2f: SR rate = %g, want %g", b, got, wantSR)
		}
		if got := rates.rate(RarityR); got != baseRateR {
			t.Errorf("boost %.2f: R rate = %g, want %g", b, got, baseRateR)
		}
	}
}

func TestBoostedRatesNeverNegativeN(t *testing.T) {
	for b := 0.0; b <= 1.0; b += 0.05 {
		if n := boostedRates(b).rate(RarityN); n < 0 {
			t.Fatalf("boost %.2f: N rate went negative: %g", b, n)
		}
	}
}

func TestPick(t *testing.T) {
	rates := baseRates()
	tests := []struct {
		roll float64
		want Rarity
	}{
		{0.005, RaritySSR},
		{0.01, RaritySSR},
		{0.05, RaritySR},
		{0.10, RaritySR},
		{0.2, RarityR},
		{0.40, RarityR},
		{0.5, RarityN},
		{0.9, RarityN},
		{0.999999, RarityN},
	}
	for _, tt := range tests {
		if got := rates.pick(tt.roll); got != tt.want {
			t.Errorf("pick(%g) = %s, want %s", tt.roll, got, tt.want)
		}
	}
}

func TestPickBoostedShiftsTiers(t *testing.T) {
	// With a full boost SSR takes the first 2% of the line.
	rates := boostedRates(1.0)
	if got := rates.pick(0.015); got != RaritySSR {
		t.Errorf("pick(0.015) under full boost = %s, want SSR", got)
	}
	if got := rates.pick(0.10); got != RaritySR {
		t.Errorf("pick(0.10) under full boost = %s, want SR", got)
	}
}
