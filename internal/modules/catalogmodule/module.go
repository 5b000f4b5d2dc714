// Package catalogmodule owns the movie and sequel catalog.
package catalogmodule

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/api"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/core/repository"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule/service"
	"github.com/mantonx/moviecat/internal/modules/modulemanager"
)

const (
	// ModuleID is the unique identifier for the catalog module
	ModuleID = "system.catalog"

	// ModuleName is the display name for the catalog module
	ModuleName = "Catalog"

	// RepositoryService is the service name of the catalog repository
	RepositoryService = "catalog.repository"
)

// Module implements the catalog store as a module
type Module struct {
	db     *gorm.DB
	limits service.Limits
	log    hclog.Logger

	repo    *repository.CatalogRepository
	service *service.CatalogService
}

// NewModule creates the catalog module
func NewModule(db *gorm.DB, cfg *config.Config, log hclog.Logger) *Module {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Module{
		db:     db,
		limits: service.LimitsFromConfig(cfg.Catalog),
		log:    log.Named("catalog"),
	}
}

// ID returns the unique module identifier
func (m *Module) ID() string {
	return ModuleID
}

// Name returns the module display name
func (m *Module) Name() string {
	return ModuleName
}

// Core returns whether this is a core module
func (m *Module) Core() bool {
	return true
}

// Migrate creates the movie and sequel tables
func (m *Module) Migrate(db *gorm.DB) error {
	m.log.Debug("migrating catalog schema")
	if err := db.AutoMigrate(&database.Movie{}, &database.Sequel{}); err != nil {
		return fmt.Errorf("failed to migrate catalog models: %w", err)
	}
	return nil
}

// ProvidedServices lists the services this module registers
func (m *Module) ProvidedServices() []string {
	return []string{RepositoryService}
}

// RegisterServices builds the repository and publishes it
func (m *Module) RegisterServices(services modulemanager.Services) error {
	m.repo = repository.NewCatalogRepository(m.db)
	return services.Register(RepositoryService, m.repo)
}

// Init initializes the catalog module
func (m *Module) Init() error {
	if m.repo == nil {
		m.repo = repository.NewCatalogRepository(m.db)
	}
	m.service = service.NewCatalogService(m.repo, m.limits, m.log)
	m.log.Info("catalog module initialized",
		"recent_window_months", m.limits.RecentWindowMonths,
		"top_rated_limit", m.limits.TopRatedLimit,
		"suggestion_limit", m.limits.SuggestionLimit)
	return nil
}

// Service returns the catalog service
func (m *Module) Service() *service.CatalogService {
	return m.service
}

// Repository returns the catalog repository
func (m *Module) Repository() *repository.CatalogRepository {
	return m.repo
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.RouterGroup) {
	api.RegisterRoutes(router, api.NewHandler(m.service))
}

// ReloadConfig applies new listing limits
func (m *Module) ReloadConfig(cfg *config.Config) error {
	m.limits = service.LimitsFromConfig(cfg.Catalog)
	if m.service != nil {
		m.service.SetLimits(m.limits)
	}
	return nil
}

// HealthCheck pings the database
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{Status: modulemanager.HealthStateHealthy, LastChecked: time.Now()}
	if m.repo == nil {
		status.Status = modulemanager.HealthStateUnknown
		status.Message = "not initialized"
		return status
	}
	if err := m.repo.Ping(ctx); err != nil {
		status.Status = modulemanager.HealthStateUnhealthy
		status.Message = err.Error()
	}
	return status
}
