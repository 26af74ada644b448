// models/usage_record.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UsageRecord is one measured screen-time sample. A day can hold
// several samples; the day total is their sum.
type UsageRecord struct {
	bun.BaseModel `bun:"table:usage_records,alias:ur"`

	ID              int64     `bun:"id,pk,autoincrement"`
	UserID          string    `bun:"user_id,notnull"`
	Date            time.Time `bun:"date,notnull,default:current_timestamp"`
	DurationSeconds float64   `bun:"duration_seconds,notnull"`
}

func (r *UsageRecord) DurationHours() float64 {
	return r.DurationSeconds / 3600.0
}
