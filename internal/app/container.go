package app

import (
	"context"
	"time"

	"github.com/miragem-dev/miragem/internal/application/doctor"
	"github.com/miragem-dev/miragem/internal/application/simulate"
	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/infrastructure/ai"
	"github.com/miragem-dev/miragem/internal/infrastructure/archive"
	"github.com/miragem-dev/miragem/internal/infrastructure/config"
	"github.com/miragem-dev/miragem/internal/infrastructure/extract"
	"github.com/miragem-dev/miragem/internal/infrastructure/prompt"
	"github.com/miragem-dev/miragem/internal/infrastructure/session"
	"github.com/miragem-dev/miragem/internal/pkg/filesystem"
	"github.com/miragem-dev/miragem/internal/pkg/logger"
	"github.com/miragem-dev/miragem/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	SimulateService *simulate.Service
	DoctorService   *doctor.Service
	ConfigProvider  ports.ConfigProvider
	ConfigLoader    *config.FileLoader
	ArchiveStore    ports.ArchiveStore
	Sessions        ports.SessionOpener
	Logger          ports.Logger
	Config          domain.Config
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(verbose)
	archiveStore := archive.NewSQLiteStore(filesystem.MiragemDir("historico.db"))
	sessions := session.NewOpener(cfg.Session.Dir, time.Duration(cfg.Session.FlushIntervalMS)*time.Millisecond)

	simulateService := &simulate.Service{
		ConfigProvider: cfgLoader,
		Factory:        ai.NewFactory(),
		Prompts:        prompt.NewBuilder(),
		Extractor:      extract.NewNormalizer(),
		Archive:        archiveStore,
		Logger:         log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Archive:        archiveStore,
	}

	return &Container{
		SimulateService: simulateService,
		DoctorService:   doctorService,
		ConfigProvider:  cfgLoader,
		ConfigLoader:    cfgLoader,
		ArchiveStore:    archiveStore,
		Sessions:        sessions,
		Logger:          log,
		Config:          cfg,
	}, nil
}
