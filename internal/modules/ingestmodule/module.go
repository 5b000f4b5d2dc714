// Package ingestmodule populates the catalog from The Movie Database.
package ingestmodule

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/modules/catalogmodule"
	"github.com/mantonx/moviecat/internal/modules/modulemanager"
	"github.com/mantonx/moviecat/internal/tmdb"
)

const (
	// ModuleID is the unique identifier for the ingest module
	ModuleID = "system.ingest"

	// ModuleName is the display name for the ingest module
	ModuleName = "Catalog Ingestion"
)

// Module builds the importer once the catalog is available
type Module struct {
	cfg config.TMDBConfig
	log hclog.Logger

	catalog  Catalog
	importer *Importer
}

// NewModule creates the ingest module
func NewModule(cfg *config.Config, log hclog.Logger) *Module {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Module{cfg: cfg.TMDB, log: log.Named("ingest")}
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

// Migrate is a no-op; the catalog owns the tables
func (m *Module) Migrate(_ *gorm.DB) error {
	return nil
}

// RequiredServices lists the services this module consumes
func (m *Module) RequiredServices() []string {
	return []string{catalogmodule.RepositoryService}
}

// InjectServices resolves the catalog repository
func (m *Module) InjectServices(services modulemanager.Services) error {
	catalog, err := modulemanager.Lookup[Catalog](services, catalogmodule.RepositoryService)
	if err != nil {
		return err
	}
	m.catalog = catalog
	return nil
}

// Init builds the TMDB client and importer
func (m *Module) Init() error {
	if m.catalog == nil {
		return fmt.Errorf("ingest module requires %s", catalogmodule.RepositoryService)
	}
	if m.cfg.APIKey == "" {
		m.log.Warn("no TMDB API key configured; ingestion requests will be rejected")
	}
	client := tmdb.NewClient(m.cfg, m.log)
	m.importer = NewImporter(client, m.catalog, m.cfg.ImageBaseURL, m.log)
	return nil
}

// Importer returns the catalog importer
func (m *Module) Importer() *Importer {
	return m.importer
}
