package commands

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command // name and aliases
	primary map[string]Command // name only
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		primary: make(map[string]Command),
	}
}

// Register adds a command to the registry.
// Returns an error if the name or any alias is empty or already registered.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for _, name := range names {
		if name == "" {
			return errors.New("command name must not be empty")
		}
		if _, exists := r.byName[name]; exists {
			return fmt.Errorf("command name already registered: %s", name)
		}
	}

	for _, name := range names {
		r.byName[name] = c
	}
	r.primary[c.Name()] = c
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Command, 0, len(r.primary))
	for _, cmd := range r.primary {
		result = append(result, cmd)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
