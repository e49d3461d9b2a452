// Package engine orchestrates one task execution end-to-end: moderate the
// task, assemble context from memory, invoke the model provider, record the
// exchange. The engine is intentionally thin: it orchestrates, it doesn't
// do the work itself.
package engine

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/zdevelops1/goliath/internal/config"
	"github.com/zdevelops1/goliath/internal/memory"
	"github.com/zdevelops1/goliath/internal/moderation"
	"github.com/zdevelops1/goliath/internal/provider"
	"github.com/zdevelops1/goliath/pkg/types"
)

// Moderator is the pre-flight content gate contract. It returns nil for
// acceptable text and an error (typically *moderation.Error) otherwise.
type Moderator func(task string) error

// Engine executes plain-English tasks against a single model provider with
// persistent memory. The provider is resolved exactly once, at construction,
// and never swapped for the engine's lifetime.
type Engine struct {
	cfg      *config.Config
	provider provider.Provider
	memory   *memory.Store
	moderate Moderator
}

// New constructs an engine using the built-in provider registry and the
// shipped moderation gate. An empty providerName selects the configured
// default. Resolution failures (*provider.UnknownProviderError,
// *provider.LoadError) surface here, before any task is accepted.
func New(cfg *config.Config, providerName string) (*Engine, error) {
	if providerName == "" {
		providerName = cfg.Provider.Default
	}

	p, err := provider.Defaults().Resolve(providerName, cfg)
	if err != nil {
		return nil, err
	}

	return newEngine(cfg, p, memory.Open(cfg.Memory.Path, cfg.Memory.MaxHistory), moderation.Check), nil
}

// newEngine wires an engine from explicit collaborators. Tests use it to
// substitute stub providers and gates.
func newEngine(cfg *config.Config, p provider.Provider, store *memory.Store, moderate Moderator) *Engine {
	return &Engine{
		cfg:      cfg,
		provider: p,
		memory:   store,
		moderate: moderate,
	}
}

// Provider returns the resolved provider.
func (e *Engine) Provider() provider.Provider { return e.provider }

// Memory returns the engine's memory store. Front ends use it for the
// remember/recall/forget commands.
func (e *Engine) Memory() *memory.Store { return e.memory }

// Execute runs one task to completion and returns the model response.
//
// A moderation or provider failure propagates unchanged and leaves memory
// exactly as it was before the call; the exchange is recorded only after a
// successful provider call.
func (e *Engine) Execute(ctx context.Context, task string) (*types.ModelResponse, error) {
	// Content moderation blocks harmful requests before they reach the model.
	if err := e.moderate(task); err != nil {
		return nil, err
	}

	// Build the system prompt with any stored facts.
	systemPrompt := e.cfg.Engine.SystemPrompt
	if factsContext := e.memory.FactsAsContext(); factsContext != "" {
		systemPrompt = systemPrompt + "\n\n" + factsContext
	}

	// Conversation history for context. Empty history is passed as nil, not
	// as an empty slice; some backends treat the two differently.
	history := e.memory.History()
	if len(history) == 0 {
		history = nil
	}

	requestID := uuid.NewString()
	log.Printf("engine: [%s] dispatching task to %s (%s)", requestID, e.provider.Name(), e.provider.Model())

	result, err := e.provider.Run(ctx, task, systemPrompt, history)
	if err != nil {
		return nil, err
	}

	log.Printf("engine: [%s] completed, %d tokens used", requestID, result.Usage.TotalTokens)

	// Save this exchange to memory.
	if err := e.memory.AddTurn(types.RoleUser, task); err != nil {
		return nil, err
	}
	if err := e.memory.AddTurn(types.RoleAssistant, result.Content); err != nil {
		return nil, err
	}

	return result, nil
}
