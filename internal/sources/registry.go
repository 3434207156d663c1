package sources

import (
	"sort"
	"sync"

	"github.com/mdaehl/PaperStream/internal/domain"
)

// Registry holds the primary adapter for each publisher family.
// It provides thread-safe registration and lookup, including routing a
// venue tag to the adapter that can enumerate it.
type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.Publisher]Adapter
}

// NewRegistry creates a new adapter registry with an empty adapter map.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[domain.Publisher]Adapter),
	}
}

// Register adds an adapter to the registry.
// An adapter registered for the same publisher replaces the previous one.
func (r *Registry) Register(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Descriptor().Publisher] = adapter
}

// Get returns the adapter for a publisher, or nil if none is registered.
func (r *Registry) Get(publisher domain.Publisher) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[publisher]
}

// All returns all registered adapters ordered by publisher tag, so that
// iteration order is stable across runs.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.adapters))
	for p := range r.adapters {
		tags = append(tags, string(p))
	}
	sort.Strings(tags)

	adapters := make([]Adapter, 0, len(tags))
	for _, tag := range tags {
		adapters = append(adapters, r.adapters[domain.Publisher(tag)])
	}
	return adapters
}

// ForVenue returns the adapter whose descriptor lists the venue tag, or
// nil if no registered adapter covers it. Lookup order is deterministic.
func (r *Registry) ForVenue(venue string) Adapter {
	for _, adapter := range r.All() {
		if adapter.Descriptor().SupportsVenue(venue) {
			return adapter
		}
	}
	return nil
}

// Venues returns the union of venue tags across all registered adapters,
// sorted alphabetically.
func (r *Registry) Venues() []string {
	seen := make(map[string]struct{})
	for _, adapter := range r.All() {
		for _, v := range adapter.Descriptor().Venues {
			seen[v] = struct{}{}
		}
	}

	venues := make([]string, 0, len(seen))
	for v := range seen {
		venues = append(venues, v)
	}
	sort.Strings(venues)
	return venues
}
