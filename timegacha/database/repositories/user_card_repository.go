package repositories

import (
	"context"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/uptrace/bun"
)

type UserCardRepository interface {
	Create(ctx context.Context, card *models.UserCard) error
	GetByID(ctx context.Context, id int64) (*models.UserCard, error)
	GetAllByUserID(ctx context.Context, userID string) ([]*models.UserCard, error)
	GetFavorites(ctx context.Context, userID string) ([]*models.UserCard, error)
	UpdateProgress(ctx context.Context, id int64, level int, exp int64) error
	SetFavorite(ctx context.Context, id int64, favorite bool) error
	Delete(ctx context.Context, id int64) error
}

type userCardRepository struct {
	db *bun.DB
}

func NewUserCardRepository(db *bun.DB) UserCardRepository {
	return &userCardRepository{db: db}
}

func (r *userCardRepository) Create(ctx context.Context, card *models.UserCard) error {
	card.CreatedAt = time.Now()
	card.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(card).Exec(ctx)
	return err
}

func (r *userCardRepository) GetByID(ctx context.Context, id int64) (*models.UserCard, error) {
	card := new(models.UserCard)
	err := r.db.NewSelect().
		Model(card).
		Where("id = ?", id).
		Scan(ctx)
	return card, err
}

func (r *userCardRepository) GetAllByUserID(ctx context.Context, userID string) ([]*models.UserCard, error) {
	var cards []*models.UserCard
	err := r.db.NewSelect().
		Model(&cards).
		Where("user_id = ?", userID).
		Order("obtained DESC").
		Scan(ctx)
	return cards, err
}

func (r *userCardRepository) GetFavorites(ctx context.Context, userID string) ([]*models.UserCard, error) {
	var cards []*models.UserCard
	err := r.db.NewSelect().
		Model(&cards).
		Where("user_id = ? AND favorite = true", userID).
		Order("obtained DESC").
		Scan(ctx)
	return cards, err
}

func (r *userCardRepository) UpdateProgress(ctx context.Context, id int64, level int, exp int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("level = ?", level).
		Set("exp = ?", exp).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *userCardRepository) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("favorite = ?", favorite).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *userCardRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.UserCard)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
