// Package progression handles experience, leveling and derived stats
// on owned cards.
package progression

import (
	"context"
	"fmt"

	"github.com/lunaseul/timegacha/timegacha/database/models"
)

const (
	MaxLevel = 100

	expPerLevel     = 100
	attackPerLevel  = 6
	defensePerLevel = 4

	// Flat per-level bonus used for the combined stat. Happens to equal
	// attackPerLevel+defensePerLevel today; the formulas are kept
	// separate on purpose.
	totalStatsPerLevel = 10
)

// CardStore persists progression changes to owned cards.
type CardStore interface {
	UpdateProgress(ctx context.Context, id int64, level int, exp int64) error
	SetFavorite(ctx context.Context, id int64, favorite bool) error
}

type Service struct {
	cards CardStore
}

func NewService(cards CardStore) *Service {
	return &Service{cards: cards}
}

// ExperienceNeeded is the threshold to leave the given level.
func ExperienceNeeded(level int) int64 {
	return int64(level) * expPerLevel
}

// AddExperience grants experience to the card, converting overflow
// into level-ups. A single large grant can level more than once. At
// the level cap leftover experience is discarded. Returns true iff at
// least one level-up occurred.
func (s *Service) AddExperience(ctx context.Context, card *models.UserCard, amount int64) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("negative experience grant %d", amount)
	}

	level := card.Level
	exp := card.Exp + amount
	leveledUp := false
	for exp >= ExperienceNeeded(level) && level < MaxLevel {
		exp -= ExperienceNeeded(level)
		level++
		leveledUp = true
	}
	if level >= MaxLevel {
		level = MaxLevel
		exp = 0
	}

	if err := s.cards.UpdateProgress(ctx, card.ID, level, exp); err != nil {
		return false, fmt.Errorf("failed to save card progress: %w", err)
	}
	card.Level = level
	card.Exp = exp
	return leveledUp, nil
}

// ToggleFavorite flips the favorite flag on the card.
func (s *Service) ToggleFavorite(ctx context.Context, card *models.UserCard) error {
	if err := s.cards.SetFavorite(ctx, card.ID, !card.Favorite); err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}
	card.Favorite = !card.Favorite
	return nil
}

func CurrentAttack(template *models.CardTemplate, level int) int {
	return template.AttackBonus + (level-1)*attackPerLevel
}

func CurrentDefense(template *models.CardTemplate, level int) int {
	return template.DefenseBonus + (level-1)*defensePerLevel
}

// TotalStats uses its own per-level increment rather than summing the
// attack and defense gains.
func TotalStats(template *models.CardTemplate, level int) int {
	return template.AttackBonus + template.DefenseBonus + (level-1)*totalStatsPerLevel
}

// ExperienceProgress is the fraction of the way to the next level,
// always in [0,1).
func ExperienceProgress(card *models.UserCard) float64 {
	needed := ExperienceNeeded(card.Level)
	if needed <= 0 {
		return 0
	}
	return float64(card.Exp) / float64(needed)
}

// Describe renders a card summary for display.
func Describe(card *models.UserCard, template *models.CardTemplate) string {
	desc := fmt.Sprintf("%s / %s\nLv.%d\nATK %d  DEF %d\nEXP %d/%d",
		template.Character, template.Series,
		card.Level,
		CurrentAttack(template, card.Level), CurrentDefense(template, card.Level),
		card.Exp, ExperienceNeeded(card.Level))
	if card.Boosted {
		desc += "\nobtained with boosted odds"
	}
	return desc
}
