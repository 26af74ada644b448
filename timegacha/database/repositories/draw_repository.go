package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/uptrace/bun"
)

type DrawRepository interface {
	// CreateDrawBatch persists the cards and one draw record per card
	// in a single transaction: either the whole batch lands or none of
	// it does.
	CreateDrawBatch(ctx context.Context, cards []*models.UserCard, drawType string) error
	CountToday(ctx context.Context, userID string) (int, error)
	CountAll(ctx context.Context, userID string) (int, error)
	RecentRarities(ctx context.Context, userID string, limit int) ([]int, error)
	CountOwnedByRarity(ctx context.Context, userID string, rarity int) (int, error)
}

type drawRepository struct {
	db *bun.DB
}

func NewDrawRepository(db *bun.DB) DrawRepository {
	return &drawRepository{db: db}
}

func (r *drawRepository) CreateDrawBatch(ctx context.Context, cards []*models.UserCard, drawType string) error {
	if len(cards) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin draw transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, card := range cards {
		card.CreatedAt = now
		card.UpdatedAt = now
		if _, err := tx.NewInsert().Model(card).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert user card: %w", err)
		}

		record := &models.DrawRecord{
			UserID:     card.UserID,
			UserCardID: card.ID,
			DrawType:   drawType,
			CreatedAt:  now,
		}
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert draw record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit draw batch: %w", err)
	}
	return nil
}

func (r *drawRepository) CountToday(ctx context.Context, userID string) (int, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return r.db.NewSelect().
		Model((*models.DrawRecord)(nil)).
		Where("user_id = ? AND created_at >= ?", userID, start).
		Count(ctx)
}

func (r *drawRepository) CountAll(ctx context.Context, userID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.DrawRecord)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}

// RecentRarities returns the rarity weights of the user's draws,
// newest first. limit <= 0 means the full history.
func (r *drawRepository) RecentRarities(ctx context.Context, userID string, limit int) ([]int, error) {
	var rows []struct {
		Rarity int `bun:"rarity"`
	}
	q := r.db.NewSelect().
		TableExpr("draw_records AS dr").
		ColumnExpr("ct.rarity AS rarity").
		Join("JOIN user_cards AS uc ON uc.id = dr.user_card_id").
		Join("JOIN card_templates AS ct ON ct.id = uc.template_id").
		Where("dr.user_id = ?", userID).
		OrderExpr("dr.created_at DESC, dr.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, err
	}

	weights := make([]int, len(rows))
	for i, row := range rows {
		weights[i] = row.Rarity
	}
	return weights, nil
}

func (r *drawRepository) CountOwnedByRarity(ctx context.Context, userID string, rarity int) (int, error) {
	return r.db.NewSelect().
		TableExpr("user_cards AS uc").
		Join("JOIN card_templates AS ct ON ct.id = uc.template_id").
		Where("uc.user_id = ? AND ct.rarity = ?", userID, rarity).
		Count(ctx)
}
