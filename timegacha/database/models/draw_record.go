// models/draw_record.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	DrawTypeSingle = "single"
	DrawTypeMulti  = "multi"
)

// DrawRecord is the append-only audit log of draws. Rows are never
// updated or deleted.
type DrawRecord struct {
	bun.BaseModel `bun:"table:draw_records,alias:dr"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     string    `bun:"user_id,notnull"`
	UserCardID int64     `bun:"user_card_id,notnull"`
	DrawType   string    `bun:"draw_type,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
