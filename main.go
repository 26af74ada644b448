package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lunaseul/timegacha/timegacha"
	"github.com/lunaseul/timegacha/timegacha/database"
	"github.com/lunaseul/timegacha/timegacha/logger"
	"github.com/lunaseul/timegacha/timegacha/migration"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	importLegacy := flag.Bool("import-legacy", false, "Import card templates from the legacy MongoDB catalog and exit")
	flag.Parse()

	cfg, err := timegacha.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandlerWithLevel(cfg.Log.Level)))
	slog.Info("Starting timegacha engine",
		slog.String("version", version),
		slog.String("commit", commit))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
		SSLMode:  cfg.DB.SSLMode,
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	app := timegacha.New(*cfg, version, commit)
	app.DB = db
	if err := app.SetupServices(); err != nil {
		slog.Error("Failed to set up services", slog.Any("error", err))
		os.Exit(-1)
	}

	if *importLegacy {
		migrator := migration.New(migration.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		}, app.TemplateRepository)
		imported, err := migrator.Run(ctx)
		if err != nil {
			slog.Error("Legacy import failed",
				slog.Int("imported", imported),
				slog.Any("error", err))
			os.Exit(-1)
		}
		return
	}

	var imageURL func(series, character string, rarity int) string
	if app.Spaces != nil {
		imageURL = app.Spaces.CardImageURL
	}
	if err := db.SeedTemplates(ctx, imageURL); err != nil {
		slog.Error("Failed to seed card templates", slog.Any("error", err))
		os.Exit(-1)
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	app.Engine.Sessions().StartCleanupRoutine(runCtx)

	slog.Info("Engine is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down...")
}
