// models/mission_record.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MissionRecord stores one row per successful mission completion. The
// 24h cooldown per mission type is enforced against CompletedAt, not
// against calendar midnight.
type MissionRecord struct {
	bun.BaseModel `bun:"table:mission_records,alias:mr"`

	ID          int64     `bun:"id,pk,autoincrement"`
	MissionType string    `bun:"mission_type,notnull"`
	Boost       float64   `bun:"boost,notnull"`
	CompletedAt time.Time `bun:"completed_at,notnull,default:current_timestamp"`
}
