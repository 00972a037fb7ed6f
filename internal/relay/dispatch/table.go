// Package dispatch holds the closed selector-to-handler table. The table is
// assembled once at provisioning time by registering facets; the relay core
// only ever performs constrained lookups against it, never open calls.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"relaygate/pkg/platform/sentinel"
)

// ErrUnknownSelector is returned when a payload targets a selector no facet
// has registered.
var ErrUnknownSelector = errors.New("unknown selector")

// Handler applies decoded payload arguments for one selector.
type Handler func(ctx context.Context, args json.RawMessage) error

// Table maps selectors to facet handlers.
type Table struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewTable returns an empty dispatch table.
func NewTable() *Table {
	return &Table{handlers: make(map[string]Handler)}
}

// Register binds a selector to a handler. Duplicate selectors are rejected so
// a misassembled unit fails at provisioning time, not at delivery time.
func (t *Table) Register(selector string, h Handler) error {
	if selector == "" {
		return fmt.Errorf("register: empty selector")
	}
	if h == nil {
		return fmt.Errorf("register %s: nil handler", selector)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.handlers[selector]; exists {
		return fmt.Errorf("register %s: %w", selector, sentinel.ErrConflict)
	}
	t.handlers[selector] = h
	return nil
}

// Dispatch invokes the handler registered for selector.
func (t *Table) Dispatch(ctx context.Context, selector string, args json.RawMessage) error {
	t.mu.RLock()
	h, ok := t.handlers[selector]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSelector, selector)
	}
	return h(ctx, args)
}

// Selectors lists registered selectors in sorted order.
func (t *Table) Selectors() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.handlers))
	for selector := range t.handlers {
		out = append(out, selector)
	}
	sort.Strings(out)
	return out
}
