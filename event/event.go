// Package event delivers the domain events recorded on records once their
// cascade has been written, inside the cascade transaction.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/syssam/persist/dialect"
)

// Dispatcher delivers one event. The ExecQuerier is the transaction of the
// cascade; a dispatcher error rolls the cascade back.
type Dispatcher interface {
	Dispatch(ctx context.Context, ex dialect.ExecQuerier, ev any) error
}

// DispatcherFunc type is an adapter to allow the use of ordinary
// functions as Dispatcher.
type DispatcherFunc func(context.Context, dialect.ExecQuerier, any) error

// Dispatch calls f(ctx, ex, ev).
func (f DispatcherFunc) Dispatch(ctx context.Context, ex dialect.ExecQuerier, ev any) error {
	return f(ctx, ex, ev)
}

// Named is implemented by events that carry their own name.
type Named interface {
	EventName() string
}

// Name returns the name events are routed by: the EventName of a Named
// event, the string itself for string events, or the Go type otherwise.
func Name(ev any) string {
	switch ev := ev.(type) {
	case Named:
		return ev.EventName()
	case string:
		return ev
	default:
		return fmt.Sprintf("%T", ev)
	}
}

// Handler handles an event delivered by a Bus.
type Handler func(ctx context.Context, ev any) error

// Bus is an in-process Dispatcher routing events to the handlers
// subscribed to their name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// NewBus returns an empty Bus. A nil logger uses slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{handlers: make(map[string][]Handler), logger: logger}
}

// Subscribe adds a handler for events with the given name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Dispatch calls the handlers of the event in subscription order and stops
// at the first error. Events without handlers are dropped.
func (b *Bus) Dispatch(ctx context.Context, _ dialect.ExecQuerier, ev any) error {
	name := Name(ev)
	b.mu.RLock()
	handlers := b.handlers[name]
	b.mu.RUnlock()
	if len(handlers) == 0 {
		b.logger.DebugContext(ctx, "event dropped", "event", name)
		return nil
	}
	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			return fmt.Errorf("event: handle %s: %w", name, err)
		}
	}
	return nil
}

// Multi dispatches every event to each of its dispatchers in order.
type Multi []Dispatcher

// Dispatch implements Dispatcher. All dispatchers are called and their
// errors are joined.
func (m Multi) Dispatch(ctx context.Context, ex dialect.ExecQuerier, ev any) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, ex, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Dispatcher = (*Bus)(nil)
	_ Dispatcher = (Multi)(nil)
	_ Dispatcher = DispatcherFunc(nil)
)
