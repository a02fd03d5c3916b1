// Package state keeps a typed in-memory value mirrored to one slot of a
// durable medium.
//
// A Persistent value starts from its default and is not hydrated. Hydrate reads
// the slot once; until it has completed no write reaches the medium, so the
// default never overwrites data stored by an earlier run. After hydration every
// committed change is serialized to the slot. Storage problems (no medium,
// missing or corrupt slot, failed writes) are logged and never returned: the
// in-memory value stays authoritative.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/repository/slots"
)

// Persistent is safe for concurrent use. Values of T are treated as immutable:
// callers replace them through Set or Update instead of mutating what Get returns.
type Persistent[T any] struct {
	key     string
	initial T
	medium  slots.Medium
	logger  *zap.Logger

	mu       sync.RWMutex
	value    T
	hydrated bool
}

// New returns an unhydrated state holding initial. medium may be nil, in which
// case the value lives in memory only.
func New[T any](key string, initial T, medium slots.Medium, logger *zap.Logger) *Persistent[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persistent[T]{
		key:     key,
		initial: initial,
		medium:  medium,
		logger:  logger.With(zap.String("slot", key)),
		value:   initial,
	}
}

// Load builds a state and hydrates it, returning the resulting value and
// hydration flag.
func Load[T any](ctx context.Context, key string, initial T, medium slots.Medium, logger *zap.Logger) (*Persistent[T], T, bool) {
	p := New(key, initial, medium, logger)
	value := p.Hydrate(ctx)
	return p, value, p.Hydrated()
}

// Key returns the slot name.
func (p *Persistent[T]) Key() string {
	return p.key
}

// Hydrated reports whether the initial read attempt has completed.
func (p *Persistent[T]) Hydrated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hydrated
}

// Hydrate performs the one-time read of the slot and returns the current value.
// When the slot holds a valid document it replaces the in-memory value;
// otherwise the in-memory value is kept. Later calls only return the value.
func (p *Persistent[T]) Hydrate(ctx context.Context) T {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hydrated {
		return p.value
	}
	defer func() { p.hydrated = true }()

	if p.medium == nil {
		p.logger.Warn("no persistent medium available, keeping state in memory")
		return p.value
	}

	data, err := p.medium.Read(ctx, p.key)
	switch {
	case errors.Is(err, slots.ErrSlotNotFound):
		p.logger.Debug("slot empty, using default value")
		return p.value
	case err != nil:
		p.logger.Warn("failed to read slot, using default value", zap.Error(err))
		return p.value
	}

	var stored T
	if err := json.Unmarshal(data, &stored); err != nil {
		p.logger.Warn("failed to parse slot, using default value", zap.Error(err))
		return p.value
	}

	p.value = stored
	p.logger.Debug("slot hydrated", zap.Int("bytes", len(data)))
	return p.value
}

// Get returns the current value.
func (p *Persistent[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set commits value and writes it to the slot.
func (p *Persistent[T]) Set(ctx context.Context, value T) {
	p.Update(ctx, func(T) T { return value })
}

// Update commits fn(current) and writes the result to the slot. fn runs under
// the state's lock and must not call back into p.
func (p *Persistent[T]) Update(ctx context.Context, fn func(T) T) T {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.value = fn(p.value)
	p.persistLocked(ctx)
	return p.value
}

// Reset restores the default value and removes the slot.
func (p *Persistent[T]) Reset(ctx context.Context) T {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.value = p.initial
	if p.medium != nil {
		if err := p.medium.Remove(ctx, p.key); err != nil {
			p.logger.Warn("failed to clear slot", zap.Error(err))
		}
	}
	return p.value
}

func (p *Persistent[T]) persistLocked(ctx context.Context) {
	if !p.hydrated {
		p.logger.Debug("skipping write before hydration")
		return
	}
	if p.medium == nil {
		return
	}

	data, err := json.Marshal(p.value)
	if err != nil {
		p.logger.Warn("failed to encode state", zap.Error(err))
		return
	}
	if err := p.medium.Write(ctx, p.key, data); err != nil {
		p.logger.Warn("failed to write slot, keeping in-memory value", zap.Error(err))
	}
}
