package macro

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/macrograph/internal/ctxlog"
)

// Observer is notified after every registration with the normalized name.
type Observer func(name string)

// Registry holds the handlers of one session.
type Registry struct {
	mu           sync.RWMutex
	handlers     map[string]Handler
	descriptions map[string]string
	observers    []Observer
	logger    *slog.Logger
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers:     make(map[string]Handler),
		descriptions: make(map[string]string),
		logger:       logger.With("component", "registry"),
	}
}

// Normalize returns the canonical form of a macro name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Load registers every module.
func (r *Registry) Load(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
	r.logger.Debug("Macro modules loaded.", "count", len(modules))
}

// Register stores h under name, replacing any previous handler and its
// description.
func (r *Registry) Register(name string, h Handler) {
	key := Normalize(name)
	if key == "" {
		panic("macro: cannot register a handler under an empty name")
	}
	if h == nil {
		panic(fmt.Sprintf("macro: nil handler for '%s'", key))
	}

	r.mu.Lock()
	_, replaced := r.handlers[key]
	r.handlers[key] = h
	delete(r.descriptions, key)
	observers := append([]Observer(nil), r.observers...)
	r.mu.Unlock()

	r.logger.Debug("Registering macro handler.", "name", key, "replaced", replaced)
	for _, o := range observers {
		o(key)
	}
}

// Describe attaches a one-line description to a registered macro. It
// reports false when nothing is registered under name.
func (r *Registry) Describe(name, text string) bool {
	key := Normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[key]; !ok {
		return false
	}
	if text == "" {
		delete(r.descriptions, key)
	} else {
		r.descriptions[key] = text
	}
	return true
}

// Description returns the description of the macro registered under name,
// or "".
func (r *Registry) Description(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descriptions[Normalize(name)]
}

// Observe adds a registration observer.
func (r *Registry) Observe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[Normalize(name)]
	return h, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the macro registered under name. Handler failures, including
// panics, are returned as *ExecutionError. Nothing is retried.
func (r *Registry) Execute(ctx context.Context, name string, inv Invocation) (Result, error) {
	key := Normalize(name)
	h, ok := r.Lookup(key)
	if !ok {
		r.logger.Warn("Macro not registered.", "name", name)
		return Result{}, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}

	logger := r.logger.With("macro", key, "input", inv.Input.ID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Executing macro.", "output", inv.Output.ID, "label", inv.Label)

	res, err := r.run(ctx, h, inv)
	if err != nil {
		logger.Error("Macro failed.", "error", err)
		return Result{}, &ExecutionError{Macro: key, Err: err}
	}

	logger.Debug("Macro finished.", "kind", res.Kind)
	return res, nil
}

func (r *Registry) run(ctx context.Context, h Handler, inv Invocation) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panicked: %v", p)
		}
	}()
	return h(ctx, inv)
}
