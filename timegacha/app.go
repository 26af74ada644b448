package timegacha

import (
	"time"

	"github.com/lunaseul/timegacha/timegacha/database"
	"github.com/lunaseul/timegacha/timegacha/database/repositories"
	"github.com/lunaseul/timegacha/timegacha/gacha"
	"github.com/lunaseul/timegacha/timegacha/missions"
	"github.com/lunaseul/timegacha/timegacha/progression"
	"github.com/lunaseul/timegacha/timegacha/quota"
	"github.com/lunaseul/timegacha/timegacha/services"
	"github.com/lunaseul/timegacha/timegacha/usagetime"
)

const defaultUsageTimeout = 5 * time.Second

func New(cfg Config, version string, commit string) *App {
	return &App{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// App aggregates every service the process wires at startup. All
// collaborators are explicit; there is no package-level mutable state.
type App struct {
	Cfg     Config
	Version string
	Commit  string

	DB *database.DB

	TemplateRepository repositories.TemplateRepository
	UserCardRepository repositories.UserCardRepository
	DrawRepository     repositories.DrawRepository
	MissionRepository  repositories.MissionRepository
	UsageRepository    repositories.UsageRepository

	UsageSource   usagetime.Source
	UsageRecorder *usagetime.Recorder
	Quota         *quota.Calculator
	Ledger        *missions.Ledger
	Engine        *gacha.Engine
	Progression   *progression.Service
	Search        *services.CollectionSearchService
	Spaces        *services.SpacesService
}

// SetupServices builds repositories and services over the connected
// database. Spaces stays nil when unconfigured; card images are then
// served without URLs.
func (a *App) SetupServices() error {
	bunDB := a.DB.BunDB()

	a.TemplateRepository = repositories.NewTemplateRepository(bunDB, gacha.DefaultRNG())
	a.UserCardRepository = repositories.NewUserCardRepository(bunDB)
	a.DrawRepository = repositories.NewDrawRepository(bunDB)
	a.MissionRepository = repositories.NewMissionRepository(bunDB)
	a.UsageRepository = repositories.NewUsageRepository(bunDB)

	timeout := defaultUsageTimeout
	if a.Cfg.Usage.TimeoutSeconds > 0 {
		timeout = time.Duration(a.Cfg.Usage.TimeoutSeconds) * time.Second
	}
	a.UsageSource = usagetime.WithTimeout(usagetime.NewStoreSource(a.UsageRepository), timeout)
	a.UsageRecorder = usagetime.NewRecorder(a.UsageRepository)

	a.Quota = quota.NewCalculator(a.UsageSource, a.DrawRepository)
	a.Ledger = missions.NewLedger(a.MissionRepository)
	a.Engine = gacha.NewEngine(a.TemplateRepository, a.DrawRepository, a.Ledger, a.Quota, gacha.DefaultRNG())
	a.Progression = progression.NewService(a.UserCardRepository)
	a.Search = services.NewCollectionSearchService(a.UserCardRepository, a.TemplateRepository)

	if a.Cfg.Spaces.Bucket != "" {
		spaces, err := services.NewSpacesService(
			a.Cfg.Spaces.Key,
			a.Cfg.Spaces.Secret,
			a.Cfg.Spaces.Region,
			a.Cfg.Spaces.Bucket,
			a.Cfg.Spaces.CardRoot,
		)
		if err != nil {
			return err
		}
		a.Spaces = spaces
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
