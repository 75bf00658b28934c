package plugin

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/strix/internal/core"
)

// ParserFactory creates a fresh parser instance.
type ParserFactory func() Parser

// ReporterFactory creates a fresh reporter instance.
type ReporterFactory func() Reporter

// Registry holds plugin factories by name.
type Registry struct {
	mu        sync.RWMutex
	parsers   map[string]ParserFactory
	reporters map[string]ReporterFactory
}

func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]ParserFactory),
		reporters: make(map[string]ReporterFactory),
	}
}

func (r *Registry) RegisterParser(name string, factory ParserFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[name] = factory
}

func (r *Registry) RegisterReporter(name string, factory ReporterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reporters[name] = factory
}

// NewParser instantiates the named parser.
func (r *Registry) NewParser(name string) (Parser, error) {
	r.mu.RLock()
	factory, exists := r.parsers[name]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: parser %q", core.ErrPluginNotFound, name)
	}
	return factory(), nil
}

// NewReporter instantiates the named reporter.
func (r *Registry) NewReporter(name string) (Reporter, error) {
	r.mu.RLock()
	factory, exists := r.reporters[name]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: reporter %q", core.ErrPluginNotFound, name)
	}
	return factory(), nil
}

// ParserNames returns the registered parser names in sorted order.
func (r *Registry) ParserNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReporterNames returns the registered reporter names in sorted order.
func (r *Registry) ReporterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.reporters))
	for name := range r.reporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that built-in plugins register
// into from package init.
func Default() *Registry { return defaultRegistry }

func RegisterParser(name string, factory ParserFactory) {
	defaultRegistry.RegisterParser(name, factory)
}

func RegisterReporter(name string, factory ReporterFactory) {
	defaultRegistry.RegisterReporter(name, factory)
}
