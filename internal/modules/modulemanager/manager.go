package modulemanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/config"
)

// ModuleRegistry manages module registration and initialization
type ModuleRegistry struct {
	mu              sync.RWMutex
	modules         map[string]Module
	disabledModules map[string]bool
	order           []Module
	services        *serviceMap
	initialized     bool
	log             hclog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(log hclog.Logger) *ModuleRegistry {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &ModuleRegistry{
		modules:         make(map[string]Module),
		disabledModules: make(map[string]bool),
		services:        newServiceMap(),
		log:             log.Named("modules"),
	}
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		r.log.Warn("module registered after initialization", "module", m.ID())
	}

	r.modules[m.ID()] = m
	r.log.Debug("module registered", "module", m.ID(), "name", m.Name())
}

// DisableModule marks a module as disabled. Core modules cannot be disabled.
func (r *ModuleRegistry) DisableModule(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	module, exists := r.modules[id]
	if !exists {
		return fmt.Errorf("module %s not registered", id)
	}
	if module.Core() {
		return fmt.Errorf("cannot disable core module: %s", id)
	}

	r.disabledModules[id] = true
	r.log.Info("module disabled", "module", id)
	return nil
}

// LoadAll migrates and initializes all enabled modules in dependency order.
// For each module the sequence is Migrate, RegisterServices, InjectServices
// and Init, so a module sees the services of everything it depends on.
func (r *ModuleRegistry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		r.log.Warn("module system already initialized")
		return nil
	}

	enabled := make(map[string]Module)
	for id, module := range r.modules {
		if r.disabledModules[id] {
			r.log.Warn("skipping disabled module", "module", id)
			continue
		}
		enabled[id] = module
	}

	graph, err := BuildDependencyGraph(enabled)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	order := graph.GetInitializationOrder()
	graph.LogDependencyInfo(r.log)

	r.log.Info("loading modules", "count", len(order))
	for i, module := range order {
		if err := module.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", module.Name(), err)
		}

		if registrar, ok := module.(ServiceRegistrar); ok {
			if err := registrar.RegisterServices(r.services); err != nil {
				return fmt.Errorf("failed to register services for %s: %w", module.Name(), err)
			}
		}

		if injector, ok := module.(ServiceInjector); ok {
			if err := injector.InjectServices(r.services); err != nil {
				return fmt.Errorf("failed to inject services for %s: %w", module.Name(), err)
			}
		}

		if err := module.Init(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", module.Name(), err)
		}

		r.log.Info("module loaded", "module", module.ID(), "position", i+1, "total", len(order))
	}

	r.order = order
	r.initialized = true
	return nil
}

// MigrateAll runs the migrations of every enabled module without
// initializing them
func (r *ModuleRegistry) MigrateAll(db *gorm.DB) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make(map[string]Module)
	for id, module := range r.modules {
		if !r.disabledModules[id] {
			enabled[id] = module
		}
	}
	graph, err := BuildDependencyGraph(enabled)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}

	for _, module := range graph.GetInitializationOrder() {
		if err := module.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", module.Name(), err)
		}
		r.log.Info("module migrated", "module", module.ID())
	}
	return nil
}

// GetModule returns a module by ID
func (r *ModuleRegistry) GetModule(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	module, exists := r.modules[id]
	return module, exists
}

// ListModules returns the loaded modules in initialization order
func (r *ModuleRegistry) ListModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Module(nil), r.order...)
}

// Services returns the registry's service set
func (r *ModuleRegistry) Services() Services {
	return r.services
}

// RegisterRoutes registers routes for all loaded modules that implement RouteRegistrar
func (r *ModuleRegistry) RegisterRoutes(router *gin.RouterGroup) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, module := range r.order {
		if routeRegistrar, ok := module.(RouteRegistrar); ok {
			r.log.Debug("registering routes", "module", module.ID())
			routeRegistrar.RegisterRoutes(router)
		}
	}
}

// HealthCheck collects the status of every module that reports one
func (r *ModuleRegistry) HealthCheck(ctx context.Context) map[string]HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make(map[string]HealthStatus, len(r.order))
	for _, module := range r.order {
		checker, ok := module.(HealthChecker)
		if !ok {
			statuses[module.ID()] = HealthStatus{Status: HealthStateHealthy, LastChecked: time.Now()}
			continue
		}
		statuses[module.ID()] = checker.HealthCheck(ctx)
	}
	return statuses
}

// ReloadConfig passes a new configuration to every reloadable module. It
// has the shape of a config.Watcher.
func (r *ModuleRegistry) ReloadConfig(_, newConfig *config.Config) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, module := range r.order {
		reloadable, ok := module.(ConfigReloadable)
		if !ok {
			continue
		}
		if err := reloadable.ReloadConfig(newConfig); err != nil {
			r.log.Error("module config reload failed", "module", module.ID(), "error", err)
			continue
		}
		r.log.Info("module config reloaded", "module", module.ID())
	}
}
