// Package migration imports card templates from the legacy MongoDB
// catalog into Postgres. One-shot, idempotent: existing templates are
// left untouched.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/lunaseul/timegacha/timegacha/database/repositories"
	"github.com/lunaseul/timegacha/timegacha/gacha"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	connectTimeout    = 10 * time.Second
	importConcurrency = 4
)

type Config struct {
	URI        string
	Database   string
	Collection string
}

type legacyTemplate struct {
	Series    string `bson:"series"`
	Character string `bson:"character"`
	Rarity    int    `bson:"rarity"`
	ImageURL  string `bson:"image_url"`
	Active    *bool  `bson:"active"`
}

type Migrator struct {
	cfg       Config
	templates repositories.TemplateRepository
}

func New(cfg Config, templates repositories.TemplateRepository) *Migrator {
	return &Migrator{cfg: cfg, templates: templates}
}

// Run copies every legacy template document into the Postgres catalog
// and returns how many rows it imported.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(m.cfg.URI))
	if err != nil {
		return 0, fmt.Errorf("failed to connect to legacy catalog: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Warn("Failed to disconnect from legacy catalog", slog.Any("error", err))
		}
	}()

	cursor, err := client.Database(m.cfg.Database).Collection(m.cfg.Collection).Find(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to query legacy catalog: %w", err)
	}
	defer cursor.Close(ctx)

	var legacy []legacyTemplate
	if err := cursor.All(ctx, &legacy); err != nil {
		return 0, fmt.Errorf("failed to decode legacy templates: %w", err)
	}

	var imported atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(importConcurrency)

	for _, doc := range legacy {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			template, err := convert(doc)
			if err != nil {
				slog.Warn("Skipping malformed legacy template",
					slog.String("series", doc.Series),
					slog.String("character", doc.Character),
					slog.Any("error", err))
				return nil
			}
			if err := m.templates.Create(gctx, template); err != nil {
				return fmt.Errorf("failed to import %s/%s: %w", doc.Series, doc.Character, err)
			}
			imported.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(imported.Load()), err
	}

	slog.Info("Legacy template import complete",
		slog.Int("found", len(legacy)),
		slog.Int64("imported", imported.Load()))
	return int(imported.Load()), nil
}

func convert(doc legacyTemplate) (*models.CardTemplate, error) {
	if doc.Series == "" || doc.Character == "" {
		return nil, fmt.Errorf("missing series or character")
	}
	if doc.Rarity < gacha.RarityN.Weight() || doc.Rarity > gacha.RaritySSR.Weight() {
		return nil, fmt.Errorf("rarity %d out of range", doc.Rarity)
	}
	rarity := gacha.RarityFromWeight(doc.Rarity)
	active := true
	if doc.Active != nil {
		active = *doc.Active
	}
	return &models.CardTemplate{
		Series:       doc.Series,
		Character:    doc.Character,
		Rarity:       rarity.Weight(),
		AttackBonus:  rarity.AttackBonus(),
		DefenseBonus: rarity.DefenseBonus(),
		Description:  fmt.Sprintf("%s / %s [%s]\nATK +%d DEF +%d", doc.Character, doc.Series, rarity, rarity.AttackBonus(), rarity.DefenseBonus()),
		ImageURL:     doc.ImageURL,
		Active:       active,
	}, nil
}
