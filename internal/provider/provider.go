// Package provider defines the model-backend capability contract and the
// registry that resolves symbolic provider names into live backends.
//
// Every backend (Grok, OpenAI, Claude, local Ollama, etc.) implements the
// Provider interface. The engine is written against this interface only, so
// new backends can be added by registering a factory without touching any
// engine code.
package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zdevelops1/goliath/pkg/types"
)

// Provider is the capability interface every model backend must satisfy.
type Provider interface {
	// Run sends a prompt (plus system instructions and optional prior
	// history) to the model and returns the completed response. A nil
	// history means "no history"; callers pass nil rather than an empty
	// slice. Failures are reported as *Error, never as a partial response.
	Run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error)

	// Name returns the symbolic provider name (e.g. "grok").
	Name() string

	// Model returns the configured model identifier.
	Model() string
}

// Error reports a failed provider call (network fault, upstream API error,
// malformed response). It wraps the underlying cause.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// LoadError reports that a registered provider could not be constructed,
// typically because of missing credentials or a structural misconfiguration.
// It is surfaced at engine construction, before any task is accepted.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load provider %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UnknownProviderError reports a provider name that is not registered.
// Available always carries the full list of registered names so front ends
// can guide the user to a valid one.
type UnknownProviderError struct {
	Name      string
	Available []string
}

func (e *UnknownProviderError) Error() string {
	available := "(none)"
	if len(e.Available) > 0 {
		names := append([]string(nil), e.Available...)
		sort.Strings(names)
		available = strings.Join(names, ", ")
	}
	return fmt.Sprintf("unknown provider %q. Available: %s", e.Name, available)
}
