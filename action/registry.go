package action

import (
	"context"
	"sync"

	"github.com/medgovern/medflow/logger"
	"go.uber.org/zap"
)

// Handler is the boundary auto nodes call through: it receives the instance
// context and returns updates to merge back into it. Handlers may be slow
// and may fail; the engine records a failure instead of retrying.
type Handler func(ctx context.Context, wfContext map[string]any) (map[string]any, error)

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

func (r *Registry) Register(actionKey string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[actionKey] = handler
}

// Invoke runs the handler registered under actionKey. An unknown key is a
// wiring gap, not an execution failure: it resolves to a no-op so the graph
// stays usable, and is logged as a configuration warning.
func (r *Registry) Invoke(ctx context.Context, actionKey string, wfContext map[string]any) (map[string]any, error) {
	r.mu.RLock()
	handler, ok := r.handlers[actionKey]
	r.mu.RUnlock()
	if !ok {
		logger.Warn("no handler registered for action key, treating as no-op", zap.String("actionKey", actionKey))
		return nil, nil
	}
	return handler(ctx, wfContext)
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	return keys
}
