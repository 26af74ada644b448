package gacha

// Rarity is the tier of a card template. The numeric value doubles as
// the sort weight: N=1 < R=2 < SR=3 < SSR=4.
type Rarity int

const (
	RarityN Rarity = iota + 1
	RarityR
	RaritySR
	RaritySSR
)

// AllRarities is ordered by descending weight, the order the
// cumulative probability walk uses.
var AllRarities = [4]Rarity{RaritySSR, RaritySR, RarityR, RarityN}

func (r Rarity) Weight() int {
	return int(r)
}

func (r Rarity) String() string {
	switch r {
	case RaritySSR:
		return "SSR"
	case RaritySR:
		return "SR"
	case RarityR:
		return "R"
	default:
		return "N"
	}
}

// Color returns the hex color used when presenting cards of this rarity.
func (r Rarity) Color() string {
	switch r {
	case RaritySSR:
		return "#FF00FF"
	case RaritySR:
		return "#0000FF"
	case RarityR:
		return "#008000"
	default:
		return "#888888"
	}
}

func (r Rarity) AttackBonus() int {
	switch r {
	case RaritySSR:
		return 100
	case RaritySR:
		return 60
	case RarityR:
		return 30
	default:
		return 10
	}
}

func (r Rarity) DefenseBonus() int {
	switch r {
	case RaritySSR:
		return 50
	case RaritySR:
		return 30
	case RarityR:
		return 15
	default:
		return 5
	}
}

// RarityFromWeight maps a stored weight back to a Rarity, defaulting
// to N for anything out of range.
func RarityFromWeight(w int) Rarity {
	if w >= int(RarityN) && w <= int(RaritySSR) {
		return Rarity(w)
	}
	return RarityN
}
