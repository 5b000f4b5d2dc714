// Package interactionmodule records ratings, reviews and user histories.
package interactionmodule

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/database"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule"
	"github.com/mantonx/moviecat/internal/modules/interactionmodule/api"
	"github.com/mantonx/moviecat/internal/modules/interactionmodule/core/repository"
	"github.com/mantonx/moviecat/internal/modules/interactionmodule/service"
	"github.com/mantonx/moviecat/internal/modules/modulemanager"
)

const (
	// ModuleID is the unique identifier for the interaction module
	ModuleID = "system.interaction"

	// ModuleName is the display name for the interaction module
	ModuleName = "Interactions"

	// RepositoryService is the service name of the interaction repository
	RepositoryService = "interaction.repository"
)

// Module implements the interaction log as a module
type Module struct {
	db    *gorm.DB
	rules service.Rules
	log   hclog.Logger

	repo    *repository.InteractionRepository
	movies  service.Movies
	service *service.InteractionService
}

// NewModule creates the interaction module
func NewModule(db *gorm.DB, cfg *config.Config, log hclog.Logger) *Module {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Module{
		db:    db,
		rules: service.RulesFromConfig(cfg.Interaction),
		log:   log.Named("interaction"),
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

// Dependencies returns the modules whose tables this module references
func (m *Module) Dependencies() []string {
	return []string{catalogmodule.ModuleID}
}

// Migrate creates the rating and history tables
func (m *Module) Migrate(db *gorm.DB) error {
	m.log.Debug("migrating interaction schema")
	if err := db.AutoMigrate(&database.RatingReview{}, &database.WatchHistory{}, &database.SearchHistory{}); err != nil {
		return fmt.Errorf("failed to migrate interaction models: %w", err)
	}
	return nil
}

// ProvidedServices lists the services this module registers
func (m *Module) ProvidedServices() []string {
	return []string{RepositoryService}
}

// RequiredServices lists the services this module consumes
func (m *Module) RequiredServices() []string {
	return []string{catalogmodule.RepositoryService}
}

// RegisterServices builds the repository and publishes it
func (m *Module) RegisterServices(services modulemanager.Services) error {
	m.repo = repository.NewInteractionRepository(m.db)
	return services.Register(RepositoryService, m.repo)
}

// InjectServices resolves the catalog used to check movies exist
func (m *Module) InjectServices(services modulemanager.Services) error {
	movies, err := modulemanager.Lookup[service.Movies](services, catalogmodule.RepositoryService)
	if err != nil {
		return err
	}
	m.movies = movies
	return nil
}

// Init initializes the interaction module
func (m *Module) Init() error {
	if m.movies == nil {
		return fmt.Errorf("interaction module requires %s", catalogmodule.RepositoryService)
	}
	if m.repo == nil {
		m.repo = repository.NewInteractionRepository(m.db)
	}
	m.service = service.NewInteractionService(m.repo, m.movies, m.rules, m.log)
	m.log.Info("interaction module initialized", "max_rating", m.rules.MaxRating, "rate_retries", m.rules.RateRetries)
	return nil
}

// Service returns the interaction service
func (m *Module) Service() *service.InteractionService {
	return m.service
}

// Repository returns the interaction repository
func (m *Module) Repository() *repository.InteractionRepository {
	return m.repo
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.RouterGroup) {
	api.RegisterRoutes(router, api.NewHandler(m.service))
}

// ReloadConfig applies new rating rules
func (m *Module) ReloadConfig(cfg *config.Config) error {
	m.rules = service.RulesFromConfig(cfg.Interaction)
	if m.service != nil {
		m.service.SetRules(m.rules)
	}
	return nil
}

// HealthCheck reports whether the module is ready to serve
func (m *Module) HealthCheck(_ context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{Status: modulemanager.HealthStateHealthy, LastChecked: time.Now()}
	if m.service == nil {
		status.Status = modulemanager.HealthStateUnknown
		status.Message = "not initialized"
	}
	return status
}
