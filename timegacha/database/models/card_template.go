// models/card_template.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CardTemplate is the immutable definition of an obtainable card:
// one row per (series, character, rarity) combination. Only Active is
// ever mutated after seeding.
type CardTemplate struct {
	bun.BaseModel `bun:"table:card_templates,alias:ct"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Series       string `bun:"series,notnull"`
	Character    string `bun:"character,notnull"`
	Rarity       int    `bun:"rarity,notnull"`
	AttackBonus  int    `bun:"attack_bonus,notnull"`
	DefenseBonus int    `bun:"defense_bonus,notnull"`
	Description  string `bun:"description,type:text,default:''"`
	ImageURL     string `bun:"image_url,type:text,default:''"`
	Active       bool   `bun:"active,notnull,default:true"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (t *CardTemplate) TotalStats() int {
	return t.AttackBonus + t.DefenseBonus
}
