// models/user_card.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserCard struct {
	bun.BaseModel `bun:"table:user_cards,alias:uc"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     string    `bun:"user_id,notnull"`
	TemplateID int64     `bun:"template_id,notnull"`
	Obtained   time.Time `bun:"obtained,notnull,default:current_timestamp"`
	Boosted    bool      `bun:"boosted,notnull,default:false"`
	Level      int       `bun:"level,notnull,default:1"`
	Exp        int64     `bun:"exp,notnull,default:0"`
	Favorite   bool      `bun:"favorite,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// ObtainedToday reports whether the card was drawn on the current
// local calendar day.
func (c *UserCard) ObtainedToday() bool {
	now := time.Now()
	y1, m1, d1 := c.Obtained.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
