package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/lunaseul/timegacha/timegacha/gacha"
	"github.com/uptrace/bun"
)

// ErrNoTemplateAvailable means the active pool for a rarity is empty.
// This is a catalog configuration error; draws must fail rather than
// fall back to another rarity.
var ErrNoTemplateAvailable = errors.New("no active card template for rarity")

const templateCacheSize = 16

type TemplateRepository interface {
	Create(ctx context.Context, template *models.CardTemplate) error
	GetByID(ctx context.Context, id int64) (*models.CardTemplate, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.CardTemplate, error)
	GetAll(ctx context.Context) ([]*models.CardTemplate, error)
	Count(ctx context.Context) (int, error)
	CountByRarity(ctx context.Context, rarity int) (int, error)
	CountBySeries(ctx context.Context) (map[string]int, error)
	RandomByRarity(ctx context.Context, rarity gacha.Rarity) (*models.CardTemplate, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type templateRepository struct {
	db    *bun.DB
	cache *lru.Cache // rarity weight -> []*models.CardTemplate active pool
	rng   gacha.RandomSource
}

func NewTemplateRepository(db *bun.DB, rng gacha.RandomSource) TemplateRepository {
	if rng == nil {
		rng = gacha.DefaultRNG()
	}
	cache, _ := lru.New(templateCacheSize)
	return &templateRepository{db: db, cache: cache, rng: rng}
}

func (r *templateRepository) Create(ctx context.Context, template *models.CardTemplate) error {
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(template).
		On("CONFLICT (series, character, rarity) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	r.cache.Remove(template.Rarity)
	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, id int64) (*models.CardTemplate, error) {
	template := new(models.CardTemplate)
	err := r.db.NewSelect().
		Model(template).
		Where("id = ?", id).
		Scan(ctx)
	return template, err
}

func (r *templateRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.CardTemplate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var templates []*models.CardTemplate
	err := r.db.NewSelect().
		Model(&templates).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	return templates, err
}

func (r *templateRepository) GetAll(ctx context.Context) ([]*models.CardTemplate, error) {
	var templates []*models.CardTemplate
	err := r.db.NewSelect().
		Model(&templates).
		Order("series ASC", "character ASC", "rarity ASC").
		Scan(ctx)
	return templates, err
}

func (r *templateRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.CardTemplate)(nil)).
		Count(ctx)
}

func (r *templateRepository) CountByRarity(ctx context.Context, rarity int) (int, error) {
	return r.db.NewSelect().
		Model((*models.CardTemplate)(nil)).
		Where("rarity = ?", rarity).
		Count(ctx)
}

func (r *templateRepository) CountBySeries(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Series string `bun:"series"`
		Count  int    `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*models.CardTemplate)(nil)).
		ColumnExpr("series").
		ColumnExpr("COUNT(*) AS count").
		Group("series").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Series] = row.Count
	}
	return counts, nil
}

// RandomByRarity picks a uniformly random active template of the
// requested rarity. The active pool per rarity is small and stable, so
// it is cached and invalidated on any template mutation.
func (r *templateRepository) RandomByRarity(ctx context.Context, rarity gacha.Rarity) (*models.CardTemplate, error) {
	pool, err := r.activePool(ctx, rarity.Weight())
	if err != nil {
		return nil, fmt.Errorf("failed to load template pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplateAvailable, rarity)
	}
	return pool[int(r.rng.Float64()*float64(len(pool)))%len(pool)], nil
}

func (r *templateRepository) SetActive(ctx context.Context, id int64, active bool) error {
	template, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.db.NewUpdate().
		Model((*models.CardTemplate)(nil)).
		Set("active = ?", active).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	r.cache.Remove(template.Rarity)
	return nil
}

func (r *templateRepository) activePool(ctx context.Context, rarity int) ([]*models.CardTemplate, error) {
	if cached, ok := r.cache.Get(rarity); ok {
		return cached.([]*models.CardTemplate), nil
	}

	var pool []*models.CardTemplate
	err := r.db.NewSelect().
		Model(&pool).
		Where("rarity = ? AND active = true", rarity).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Add(rarity, pool)
	return pool, nil
}
