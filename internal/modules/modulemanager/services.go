package modulemanager

import (
	"fmt"
	"sort"
	"sync"
)

// Services is the set of services modules expose to each other
type Services interface {
	Register(name string, service interface{}) error
	Get(name string) (interface{}, error)
	List() []string
}

type serviceMap struct {
	mu       sync.RWMutex
	services map[string]interface{}
}

func newServiceMap() *serviceMap {
	return &serviceMap{services: make(map[string]interface{})}
}

func (s *serviceMap) Register(name string, service interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}
	s.services[name] = service
	return nil
}

func (s *serviceMap) Get(name string) (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.services[name]
	if !ok {
		return nil, fmt.Errorf("service %s not registered", name)
	}
	return service, nil
}

func (s *serviceMap) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.services))
	for name := range s.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup fetches a service and asserts its type.
func Lookup[T any](services Services, name string) (T, error) {
	var zero T
	raw, err := services.Get(name)
	if err != nil {
		return zero, err
	}
	service, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has type %T, want %T", name, raw, zero)
	}
	return service, nil
}
