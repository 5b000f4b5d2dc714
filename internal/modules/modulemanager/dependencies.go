// Package modulemanager provides module dependency management and initialization ordering
package modulemanager

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// ModuleDependencyGraph represents the dependency relationships between modules
type ModuleDependencyGraph struct {
	nodes        map[string]*DependencyNode
	serviceGraph map[string]string // service name -> module ID that provides it
}

// DependencyNode represents a module in the dependency graph
type DependencyNode struct {
	ModuleID         string
	Module           Module
	Dependencies     []string // Module IDs this module depends on
	Dependents       []string // Module IDs that depend on this module
	ProvidedServices []string
	RequiredServices []string
	InitOrder        int // Order in which to initialize (lower = earlier)

	visited bool
	inStack bool
}

// BuildDependencyGraph creates a dependency graph from registered modules
func BuildDependencyGraph(modules map[string]Module) (*ModuleDependencyGraph, error) {
	graph := &ModuleDependencyGraph{
		nodes:        make(map[string]*DependencyNode),
		serviceGraph: make(map[string]string),
	}

	// First pass: create nodes and collect service information
	for _, id := range sortedIDs(modules) {
		module := modules[id]
		node := &DependencyNode{ModuleID: id, Module: module}

		if depProvider, ok := module.(DependencyProvider); ok {
			node.Dependencies = append(node.Dependencies, depProvider.Dependencies()...)
		}

		if serviceProvider, ok := module.(ServiceProvider); ok {
			node.ProvidedServices = serviceProvider.ProvidedServices()
			for _, service := range node.ProvidedServices {
				if existingProvider, exists := graph.serviceGraph[service]; exists {
					return nil, fmt.Errorf("service '%s' is provided by multiple modules: %s and %s",
						service, existingProvider, id)
				}
				graph.serviceGraph[service] = id
			}
		}

		if serviceConsumer, ok := module.(ServiceConsumer); ok {
			node.RequiredServices = serviceConsumer.RequiredServices()
		}

		graph.nodes[id] = node
	}

	// Second pass: resolve service dependencies to module dependencies
	for id, node := range graph.nodes {
		for _, requiredService := range node.RequiredServices {
			providerID, exists := graph.serviceGraph[requiredService]
			if !exists {
				return nil, fmt.Errorf("module %s requires service '%s' but no provider found", id, requiredService)
			}
			if providerID != id && !contains(node.Dependencies, providerID) {
				node.Dependencies = append(node.Dependencies, providerID)
			}
		}
	}

	// Third pass: build dependents lists
	for _, id := range sortedIDs(graph.nodes) {
		node := graph.nodes[id]
		for _, depID := range node.Dependencies {
			depNode, exists := graph.nodes[depID]
			if !exists {
				return nil, fmt.Errorf("module %s depends on non-existent module %s", id, depID)
			}
			depNode.Dependents = append(depNode.Dependents, id)
		}
	}

	if err := graph.detectCycles(); err != nil {
		return nil, err
	}

	return graph, nil
}

// detectCycles uses DFS to detect dependency cycles
func (g *ModuleDependencyGraph) detectCycles() error {
	for _, id := range sortedIDs(g.nodes) {
		if !g.nodes[id].visited {
			if err := g.detectCyclesDFS(id, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *ModuleDependencyGraph) detectCyclesDFS(nodeID string, path []string) error {
	node := g.nodes[nodeID]
	node.visited = true
	node.inStack = true
	path = append(path, nodeID)

	for _, depID := range node.Dependencies {
		depNode := g.nodes[depID]
		if !depNode.visited {
			if err := g.detectCyclesDFS(depID, path); err != nil {
				return err
			}
			continue
		}
		if depNode.inStack {
			for i, id := range path {
				if id == depID {
					cycle := append(append([]string{}, path[i:]...), depID)
					return fmt.Errorf("circular dependency detected: %v", cycle)
				}
			}
		}
	}

	node.inStack = false
	return nil
}

// GetInitializationOrder returns modules in the order they should be
// initialized. Independent modules are ordered by ID so startup is stable.
func (g *ModuleDependencyGraph) GetInitializationOrder() []Module {
	order := make([]Module, 0, len(g.nodes))
	visited := make(map[string]bool)

	var visit func(string)
	visit = func(nodeID string) {
		if visited[nodeID] {
			return
		}
		visited[nodeID] = true

		node := g.nodes[nodeID]
		deps := append([]string{}, node.Dependencies...)
		sort.Strings(deps)
		for _, depID := range deps {
			visit(depID)
		}

		order = append(order, node.Module)
		node.InitOrder = len(order)
	}

	for _, id := range sortedIDs(g.nodes) {
		visit(id)
	}

	return order
}

// LogDependencyInfo logs the resolved graph at debug level
func (g *ModuleDependencyGraph) LogDependencyInfo(log hclog.Logger) {
	for _, id := range sortedIDs(g.nodes) {
		node := g.nodes[id]
		log.Debug("module dependencies",
			"module", id,
			"depends_on", node.Dependencies,
			"provides", node.ProvidedServices,
			"requires", node.RequiredServices,
			"init_order", node.InitOrder)
	}
}

// GetModuleDependencies returns the dependencies for a specific module
func (g *ModuleDependencyGraph) GetModuleDependencies(moduleID string) ([]string, error) {
	node, exists := g.nodes[moduleID]
	if !exists {
		return nil, fmt.Errorf("module %s not found", moduleID)
	}
	return node.Dependencies, nil
}

// GetModuleDependents returns the modules that depend on a specific module
func (g *ModuleDependencyGraph) GetModuleDependents(moduleID string) ([]string, error) {
	node, exists := g.nodes[moduleID]
	if !exists {
		return nil, fmt.Errorf("module %s not found", moduleID)
	}
	return node.Dependents, nil
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
