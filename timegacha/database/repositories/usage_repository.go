package repositories

import (
	"context"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/uptrace/bun"
)

type UsageRepository interface {
	Insert(ctx context.Context, record *models.UsageRecord) error
	SumBetween(ctx context.Context, userID string, from, to time.Time) (float64, error)
	ListBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.UsageRecord, error)
}

type usageRepository struct {
	db *bun.DB
}

func NewUsageRepository(db *bun.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) Insert(ctx context.Context, record *models.UsageRecord) error {
	_, err := r.db.NewInsert().Model(record).Exec(ctx)
	return err
}

func (r *usageRepository) SumBetween(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.NewSelect().
		Model((*models.UsageRecord)(nil)).
		ColumnExpr("COALESCE(SUM(duration_seconds), 0)").
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Scan(ctx, &total)
	return total, err
}

func (r *usageRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.UsageRecord, error) {
	var records []*models.UsageRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date ASC").
		Scan(ctx)
	return records, err
}
