// Package recommendationmodule serves rating-driven recommendations.
package recommendationmodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule"
	catalogrepo "github.com/mantonx/moviecat/internal/modules/catalogmodule/core/repository"
	"github.com/mantonx/moviecat/internal/modules/interactionmodule"
	interactionrepo "github.com/mantonx/moviecat/internal/modules/interactionmodule/core/repository"
	"github.com/mantonx/moviecat/internal/modules/modulemanager"
	"github.com/mantonx/moviecat/internal/modules/recommendationmodule/api"
	"github.com/mantonx/moviecat/internal/modules/recommendationmodule/core"
)

const (
	// ModuleID is the unique identifier for the recommendation module
	ModuleID = "system.recommendation"

	// ModuleName is the display name for the recommendation module
	ModuleName = "Recommendations"
)

// Module wires the recommendation engine to the catalog and interaction log
type Module struct {
	directorLimit int
	log           hclog.Logger

	store  core.Store
	engine *core.Engine
}

// NewModule creates the recommendation module
func NewModule(cfg *config.Config, log hclog.Logger) *Module {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Module{
		directorLimit: cfg.Recommendation.DirectorLimit,
		log:           log.Named("recommendation"),
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
	return false
}

// Migrate is a no-op; the engine only reads
func (m *Module) Migrate(_ *gorm.DB) error {
	return nil
}

// RequiredServices lists the repositories the engine reads from
func (m *Module) RequiredServices() []string {
	return []string{catalogmodule.RepositoryService, interactionmodule.RepositoryService}
}

// InjectServices resolves the catalog and interaction repositories
func (m *Module) InjectServices(services modulemanager.Services) error {
	catalog, err := modulemanager.Lookup[*catalogrepo.CatalogRepository](services, catalogmodule.RepositoryService)
	if err != nil {
		return err
	}
	interactions, err := modulemanager.Lookup[*interactionrepo.InteractionRepository](services, interactionmodule.RepositoryService)
	if err != nil {
		return err
	}
	m.store = &repositoryStore{catalog: catalog, interactions: interactions}
	return nil
}

// Init builds the engine
func (m *Module) Init() error {
	if m.store == nil {
		return fmt.Errorf("recommendation module has no store")
	}
	m.engine = core.NewEngine(m.store, m.directorLimit, m.log)
	m.log.Info("recommendation module initialized", "director_limit", m.directorLimit)
	return nil
}

// Engine returns the recommendation engine
func (m *Module) Engine() *core.Engine {
	return m.engine
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.RouterGroup) {
	api.RegisterRoutes(router, api.NewHandler(m.engine))
}

// ReloadConfig applies a new director limit
func (m *Module) ReloadConfig(cfg *config.Config) error {
	m.directorLimit = cfg.Recommendation.DirectorLimit
	if m.engine != nil {
		m.engine.SetDirectorLimit(m.directorLimit)
	}
	return nil
}
