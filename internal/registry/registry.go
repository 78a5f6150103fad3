// Package registry provides a global registry for planner providers.
// Providers register themselves in init() functions, allowing the CLI
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/snakepilot/internal/config"
)

// ErrUnknownProvider is returned by Create for names nobody registered.
var ErrUnknownProvider = errors.New("registry: unknown provider")

// Request is one text completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider is a remote text-completion backend.
type Provider interface {
	// Complete sends the request and returns the raw completion text.
	// Implementations must honor ctx cancellation.
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderInfo contains metadata about a registered provider.
type ProviderInfo struct {
	Name  string
	Title string
}

// Factory builds a provider from its config section.
type Factory func(cfg config.ProviderConfig) (Provider, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a provider factory to the registry.
// Panics if a provider with the same name is already registered.
func Register(name, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("registry: provider %q already registered", name))
	}

	factories[name] = f
	titles[name] = title
}

// List returns all registered providers, sorted by name.
func List() []ProviderInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ProviderInfo, 0, len(factories))
	for name := range factories {
		result = append(result, ProviderInfo{
			Name:  name,
			Title: titles[name],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Create instantiates a provider by name.
func Create(name string, cfg config.ProviderConfig) (Provider, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, name)
	}

	p, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("registry: create %s: %w", name, err)
	}
	return p, nil
}

// Exists checks if a provider with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
