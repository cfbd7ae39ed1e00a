package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/pgexplorer/pgexplorer/internal/client"
	"github.com/pgexplorer/pgexplorer/internal/config"
	"github.com/pgexplorer/pgexplorer/internal/logger"
)

// PrimaryName is the reserved name given to the primary connection.
const PrimaryName = "primary"

// ProbeFunc validates a DSN before it is committed to the registry.
type ProbeFunc func(ctx context.Context, dsn string) error

// Entry is a resolved connection descriptor.
type Entry struct {
	Name string
	DSN  string
}

// Registry maps logical database names to DSNs and tracks the current
// selection. Invariants: current, if set, is a key of entries; if entries is
// empty, current is unset. All state transitions and reads take the lock, so
// a Registry is safe for concurrent tool invocations.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
	order   []string
	current string
	probe   ProbeFunc
}

func New() *Registry {
	return NewWithProbe(client.Probe)
}

// NewWithProbe builds a registry with a custom DSN prober. Tests use this to
// avoid real connections.
func NewWithProbe(probe ProbeFunc) *Registry {
	return &Registry{
		entries: make(map[string]string),
		probe:   probe,
	}
}

// Load populates the registry from the startup configuration. Priority order:
// the explicit primary DSN always wins the "primary" slot and the initial
// selection; the comma-separated list fills "primary" only if still vacant,
// with the remaining entries numbered by position; named entries come last,
// the first of them becoming current only if nothing is selected yet.
// Startup entries are not probed, matching dynamic behavior only for Add.
func (r *Registry) Load(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg.PrimaryDSN != "" {
		r.put(PrimaryName, cfg.PrimaryDSN)
		r.current = PrimaryName
		logger.Info("using explicit connection as primary database")
	}

	for i, dsn := range cfg.ConnectionList {
		if dsn == "" {
			continue
		}
		name := fmt.Sprintf("db_%d", i+1)
		if i == 0 && r.current == "" {
			name = PrimaryName
			r.current = name
		}
		r.put(name, dsn)
		logger.Info("added database connection", "name", name)
	}

	for _, named := range cfg.Named {
		r.put(named.Name, named.DSN)
		if r.current == "" {
			r.current = named.Name
		}
		logger.Info("added named database connection", "name", named.Name)
	}

	logger.Info("connection registry initialized", "connections", len(r.entries))
	if r.current != "" {
		logger.Info("current database", "name", r.current)
	} else if len(r.entries) == 0 {
		logger.Warn("no database connections configured")
	}
}

// put records an entry, keeping insertion order for names seen before.
func (r *Registry) put(name, dsn string) {
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = dsn
}

// Resolve returns the entry for name, or the current entry when name is
// empty. It fails with ErrNotSelected when neither is set, or a NotFoundError
// listing all known names.
func (r *Registry) Resolve(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target := name
	if target == "" {
		target = r.current
	}
	if target == "" {
		return Entry{}, ErrNotSelected
	}

	dsn, ok := r.entries[target]
	if !ok {
		known := make([]string, len(r.order))
		copy(known, r.order)
		return Entry{}, &NotFoundError{Name: target, Known: known}
	}
	return Entry{Name: target, DSN: dsn}, nil
}

// Switch selects name as current. It reports success rather than returning an
// error so callers can build their own fallback message.
func (r *Registry) Switch(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false
	}
	r.current = name
	logger.Info("switched to database", "name", name)
	return true
}

// Add validates dsn with a connect-and-close probe before committing the
// entry. On probe failure nothing is added.
func (r *Registry) Add(ctx context.Context, name, dsn string) bool {
	if err := r.probe(ctx, dsn); err != nil {
		logger.Error("failed to add database connection", err, "name", name)
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(name, dsn)
	logger.Info("added database connection", "name", name)
	return true
}

// Remove deletes the entry for name. When the current entry is removed, the
// selection moves to the first remaining entry in insertion order, or is
// cleared when none remain. The "primary" protection rule lives at the tool
// layer, not here.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false
	}

	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.current == name {
		if len(r.order) > 0 {
			r.current = r.order[0]
		} else {
			r.current = ""
		}
	}

	logger.Info("removed database connection", "name", name)
	return true
}

// List returns all names in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Current returns the selected name, or empty when nothing is selected.
func (r *Registry) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Len returns the number of entries. Health probes read this without holding
// the lock across anything else.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
