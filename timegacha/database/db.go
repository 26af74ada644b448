package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/lunaseul/timegacha/timegacha/gacha"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const defaultConnTimeout = 5 * time.Second

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
	SSLMode  string `toml:"ssl_mode"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db := &DB{pool: pool, bunDB: newBunDB(cfg)}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=%d",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, int(defaultConnTimeout.Seconds()),
	)
}

func newBunDB(cfg DBConfig) *bun.DB {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) GetPool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) QueryWithLog(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	start := time.Now()
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "query"),
			slog.String("query", sql),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err),
		)
	}
	return rows, err
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// Ping verifies both database connections are working.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}

// InitializeSchema creates all required tables and indexes.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.CardTemplate)(nil),
		(*models.UserCard)(nil),
		(*models.DrawRecord)(nil),
		(*models.MissionRecord)(nil),
		(*models.UsageRecord)(nil),
	}

	for _, model := range tables {
		_, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_card_templates_identity ON card_templates(series, character, rarity);",
		"CREATE INDEX IF NOT EXISTS idx_card_templates_rarity_active ON card_templates(rarity) WHERE active = true;",
		"CREATE INDEX IF NOT EXISTS idx_user_cards_user_id ON user_cards(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_user_cards_user_template ON user_cards(user_id, template_id);",
		"CREATE INDEX IF NOT EXISTS idx_draw_records_user_created ON draw_records(user_id, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_mission_records_type_completed ON mission_records(mission_type, completed_at);",
		"CREATE INDEX IF NOT EXISTS idx_mission_records_completed ON mission_records(completed_at);",
		"CREATE INDEX IF NOT EXISTS idx_usage_records_user_date ON usage_records(user_id, date);",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// SeedTemplates populates the card catalog on first start. Every
// character gets an N template; descending fractions of each series
// roster also get R, SR and SSR, so lower tiers always have the
// bigger pools. imageURL may be nil when no image storage is
// configured.
func (db *DB) SeedTemplates(ctx context.Context, imageURL func(series, character string, rarity int) string) error {
	count, err := db.bunDB.NewSelect().
		Model((*models.CardTemplate)(nil)).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing templates: %w", err)
	}
	if count > 0 {
		slog.Info("Card templates already seeded, skipping", slog.Int("count", count))
		return nil
	}

	created := 0
	for _, series := range templateSeeds() {
		for i, character := range series.characters {
			for _, rarity := range raritiesForIndex(i, len(series.characters)) {
				template := &models.CardTemplate{
					Series:       series.name,
					Character:    character,
					Rarity:       rarity.Weight(),
					AttackBonus:  rarity.AttackBonus(),
					DefenseBonus: rarity.DefenseBonus(),
					Description:  fmt.Sprintf("%s / %s [%s]\nATK +%d DEF +%d", character, series.name, rarity, rarity.AttackBonus(), rarity.DefenseBonus()),
					Active:       true,
					CreatedAt:    time.Now(),
					UpdatedAt:    time.Now(),
				}
				if imageURL != nil {
					template.ImageURL = imageURL(series.name, character, rarity.Weight())
				}
				if _, err := db.bunDB.NewInsert().Model(template).Exec(ctx); err != nil {
					return fmt.Errorf("failed to seed template %s/%s/%s: %w", series.name, character, rarity, err)
				}
				created++
			}
		}
	}

	// Sanity check: a draw for any rarity must be able to resolve.
	for _, rarity := range gacha.AllRarities {
		n, err := db.bunDB.NewSelect().
			Model((*models.CardTemplate)(nil)).
			Where("rarity = ? AND active = true", rarity.Weight()).
			Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("template seed left empty pool for rarity %s", rarity)
		}
	}

	slog.Info("Card templates seeded", slog.Int("created", created))
	return nil
}
