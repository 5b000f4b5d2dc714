package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/logger"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule"
	"github.com/mantonx/moviecat/internal/modules/ingestmodule"
	"github.com/mantonx/moviecat/internal/modules/interactionmodule"
	"github.com/mantonx/moviecat/internal/modules/modulemanager"
	"github.com/mantonx/moviecat/internal/modules/recommendationmodule"
)

// app holds the process-wide collaborators shared by every command
type app struct {
	config   *config.Manager
	db       *gorm.DB
	registry *modulemanager.ModuleRegistry
	log      hclog.Logger
}

// resolveConfigPath prefers the flag, then the environment, then a file in
// the working directory. An empty result means defaults plus environment.
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv("MOVIECAT_CONFIG_PATH"); p != "" {
		return p
	}
	if _, err := os.Stat("./moviecat.yaml"); err == nil {
		return "./moviecat.yaml"
	}
	return ""
}

// bootstrap loads configuration, connects the database and loads every
// module. Loading runs each module's migration.
func bootstrap(flag string) (*app, error) {
	manager := config.NewManager()
	path := resolveConfigPath(flag)
	if err := manager.Load(path); err != nil {
		return nil, fmt.Errorf("failed to load configuration from %q: %w", path, err)
	}
	cfg := manager.Get()

	logger.Configure(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logger.Root()
	if path != "" {
		log.Info("configuration loaded", "path", path)
	} else {
		log.Info("using default configuration")
	}

	db, err := database.Open(cfg.Database, log.Named("database"))
	if err != nil {
		return nil, err
	}

	registry := modulemanager.NewRegistry(log)
	registry.Register(catalogmodule.NewModule(db, cfg, log))
	registry.Register(interactionmodule.NewModule(db, cfg, log))
	registry.Register(recommendationmodule.NewModule(cfg, log))
	registry.Register(ingestmodule.NewModule(cfg, log))

	if err := registry.LoadAll(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	manager.AddWatcher(registry.ReloadConfig)

	for _, m := range registry.ListModules() {
		log.Info("module loaded", "id", m.ID(), "name", m.Name(), "core", m.Core())
	}

	return &app{config: manager, db: db, registry: registry, log: log}, nil
}

// Close releases the database connection
func (a *app) Close() {
	closeDB(a.db)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
