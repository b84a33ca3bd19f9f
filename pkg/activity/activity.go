package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"
)

// Event describes something a user did to a portfolio.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls f.
func (f HookFunc) Notify(ctx context.Context, event Event) error { return f(ctx, event) }

// Hooks fans an event out to every hook and joins their errors.
type Hooks []Hook

// Notify implements Hook.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	var errs error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Config controls the emitter.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps events with defaults before handing them to hooks.
type Emitter struct {
	hooks Hook
	cfg   Config
	now   func() time.Time
}

// NewEmitter returns an emitter. A nil hook or a disabled config makes Emit a no-op.
func NewEmitter(hook Hook, cfg Config) *Emitter {
	return &Emitter{hooks: hook, cfg: cfg, now: time.Now}
}

// WithClock overrides the time source used for OccurredAt.
func (e *Emitter) WithClock(now func() time.Time) *Emitter {
	if e != nil && now != nil {
		e.now = now
	}
	return e
}

// Enabled reports whether events are delivered.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && e.hooks != nil
}

// Emit delivers event. Events without a verb or object type are dropped.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Verb) == "" || strings.TrimSpace(event.ObjectType) == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}
	event.Metadata = maps.Clone(event.Metadata)
	return e.hooks.Notify(ctx, event)
}
