package provider

import (
	"fmt"

	"github.com/zdevelops1/goliath/internal/config"
)

// Factory constructs a Provider from configuration. Factories must fail fast:
// missing credentials are detected here, at construction, not at first call.
type Factory func(cfg *config.Config) (Provider, error)

// Registry maps symbolic provider names to factories. It replaces the usual
// scan-the-module-for-an-implementation plugin discovery with an explicit
// mapping: each backend exports exactly one factory, and duplicates are
// rejected at registration time.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Registering the same name twice is a
// structural error (two candidate implementations for one backend), not a
// silent overwrite.
func (r *Registry) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("nil factory for provider %q", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("provider %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Names returns the registered provider names, unordered.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Resolve looks up name and constructs its Provider.
//
// An unregistered name yields *UnknownProviderError enumerating the
// registered names. A factory failure (e.g. missing credentials) yields
// *LoadError wrapping the cause.
func (r *Registry) Resolve(name string, cfg *config.Config) (Provider, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, &UnknownProviderError{Name: name, Available: r.Names()}
	}

	p, err := factory(cfg)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	if p == nil {
		return nil, &LoadError{Name: name, Err: fmt.Errorf("factory returned no provider")}
	}
	return p, nil
}

// mustRegister is used when assembling the built-in registry, where a
// duplicate name is a programming error.
func mustRegister(r *Registry, name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Defaults returns a registry populated with every built-in backend.
// The OpenAI-compatible backends share one client implementation and differ
// only in endpoint, credentials, and default model; Claude, Gemini, and
// Cohere speak their own wire formats and get native clients.
func Defaults() *Registry {
	r := NewRegistry()
	mustRegister(r, "grok", newGrokProvider)
	mustRegister(r, "openai", newOpenAIProvider)
	mustRegister(r, "claude", newClaudeProvider)
	mustRegister(r, "gemini", newGeminiProvider)
	mustRegister(r, "cohere", newCohereProvider)
	mustRegister(r, "mistral", newMistralProvider)
	mustRegister(r, "deepseek", newDeepSeekProvider)
	mustRegister(r, "perplexity", newPerplexityProvider)
	mustRegister(r, "ollama", newOllamaProvider)
	return r
}
