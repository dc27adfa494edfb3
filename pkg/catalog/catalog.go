// Package catalog provides the read-only service directory used to validate
// workflow steps against the services and tasks that actually exist.
package catalog

import (
	"context"
	"sync"

	"github.com/dukex/taskcomposer/pkg/models"
)

// Catalog looks up services by name. Lookup returns nil, nil when the
// service is unknown.
type Catalog interface {
	Lookup(ctx context.Context, name string) (*models.Service, error)
}

// Static is an in-memory catalog.
type Static struct {
	mu       sync.RWMutex
	services map[string]*models.Service
}

// NewStatic creates a catalog holding the given services.
func NewStatic(services ...*models.Service) *Static {
	s := &Static{services: make(map[string]*models.Service, len(services))}
	for _, service := range services {
		s.services[service.Name] = service
	}

	return s
}

func (s *Static) Lookup(_ context.Context, name string) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.services[name]
	if !ok {
		return nil, nil
	}

	return service, nil
}

// Services returns every service in the catalog.
func (s *Static) Services() []*models.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()

	services := make([]*models.Service, 0, len(s.services))
	for _, service := range s.services {
		services = append(services, service)
	}

	return services
}

func (s *Static) replace(services map[string]*models.Service) {
	s.mu.Lock()
	s.services = services
	s.mu.Unlock()
}

// Health reports whether the catalog backend is reachable. Catalogs without
// a remote backend are always healthy.
func Health(ctx context.Context, catalog Catalog) (string, bool) {
	checker, ok := catalog.(interface {
		HealthCheck(ctx context.Context) error
	})
	if !ok {
		return "Catalog is healthy", true
	}

	if err := checker.HealthCheck(ctx); err != nil {
		return "Catalog is unhealthy: " + err.Error(), false
	}

	return "Catalog is healthy", true
}
