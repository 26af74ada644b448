package repositories

import (
	"context"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/uptrace/bun"
)

type MissionRepository interface {
	Insert(ctx context.Context, record *models.MissionRecord) error
	CountSince(ctx context.Context, missionType string, since time.Time) (int, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*models.MissionRecord, error)
}

type missionRepository struct {
	db *bun.DB
}

func NewMissionRepository(db *bun.DB) MissionRepository {
	return &missionRepository{db: db}
}

func (r *missionRepository) Insert(ctx context.Context, record *models.MissionRecord) error {
	_, err := r.db.NewInsert().Model(record).Exec(ctx)
	return err
}

func (r *missionRepository) CountSince(ctx context.Context, missionType string, since time.Time) (int, error) {
	return r.db.NewSelect().
		Model((*models.MissionRecord)(nil)).
		Where("mission_type = ? AND completed_at >= ?", missionType, since).
		Count(ctx)
}

func (r *missionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.MissionRecord, error) {
	var records []*models.MissionRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("completed_at >= ? AND completed_at < ?", from, to).
		Order("completed_at ASC").
		Scan(ctx)
	return records, err
}
