package buildings

import (
	"log/slog"
	"sync"

	"github.com/Harini-2202-S/building-weather/internal/geo"
)

// Building pairs a display name with the coordinate used for weather lookup.
// A building configured by street address carries the address until it is
// resolved at startup.
type Building struct {
	Name       string         `json:"name"`
	Address    string         `json:"address,omitempty"`
	Coordinate geo.Coordinate `json:"coordinate"`
}

// Resolver resolves a street address to a coordinate.
type Resolver interface {
	Resolve(address string) (geo.Coordinate, error)
}

// Registry holds the viewer's named buildings.
type Registry struct {
	log *slog.Logger

	mu     sync.RWMutex
	byName map[string]Building
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:    log.With("component", "buildings"),
		byName: make(map[string]Building),
	}
}

// Add registers a building that already has a coordinate. Re-adding a name
// replaces the earlier entry.
func (r *Registry) Add(b Building) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[b.Name]; !exists {
		r.order = append(r.order, b.Name)
	}
	r.byName[b.Name] = b
}

// ResolveAddresses geocodes the buildings that were configured by address and
// registers the ones that resolve. Failures are logged and skipped rather
// than failing startup, so a bad address cannot take the viewer down.
func (r *Registry) ResolveAddresses(resolver Resolver, pending []Building) {
	for _, b := range pending {
		coord, err := resolver.Resolve(b.Address)
		if err != nil {
			r.log.Warn("Skipping building with unresolvable address",
				"building", b.Name, "address", b.Address, "error", err)
			continue
		}
		b.Coordinate = coord
		r.Add(b)
		r.log.Info("Resolved building address",
			"building", b.Name, "coordinate", coord.Key())
	}
}

// Lookup returns the building with the given name.
func (r *Registry) Lookup(name string) (Building, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byName[name]
	return b, ok
}

// List returns all buildings in registration order.
func (r *Registry) List() []Building {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Building, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Coordinates returns the distinct coordinates of all registered buildings.
func (r *Registry) Coordinates() []geo.Coordinate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.order))
	out := make([]geo.Coordinate, 0, len(r.order))
	for _, name := range r.order {
		coord := r.byName[name].Coordinate
		if seen[coord.Key()] {
			continue
		}
		seen[coord.Key()] = true
		out = append(out, coord)
	}
	return out
}
