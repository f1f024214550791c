// Package eventbus is the in-process publish/subscribe registry that is the
// sole coupling mechanism between components.
package eventbus

import (
	"log/slog"
	"sync"
)

type Handler func(event Event)

// Bus dispatches events to handlers registered per tag, in subscription order.
// Subscribe and Publish are safe under arbitrary concurrent callers.
type Bus struct {
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[Tag][]Handler
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		logger:   logger.With("component", "eventbus"),
		handlers: make(map[Tag][]Handler),
	}
}

func (that *Bus) Subscribe(tag Tag, handler Handler) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.handlers[tag] = append(that.handlers[tag], handler)
}

// Publish synchronously invokes every handler currently registered for the
// event's tag and returns once they all have. The handler list is snapshotted
// under the lock and the lock released before any handler runs, so a handler
// may call Subscribe or Publish again: a reentrant Publish runs inline,
// depth-first, and the outer Publish resumes its remaining handlers after it
// unwinds. A consequence is that there is no cross-tag ordering guarantee
// when handlers fan out recursively.
//
// A panicking handler is logged and skipped; the remaining handlers for the
// same publish still run.
func (that *Bus) Publish(event Event) {
	that.mu.Lock()
	registered := that.handlers[event.Tag()]
	snapshot := make([]Handler, len(registered))
	copy(snapshot, registered)
	that.mu.Unlock()

	for _, handler := range snapshot {
		that.invoke(handler, event)
	}
}

func (that *Bus) invoke(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			that.logger.Error("event handler panicked", "tag", event.Tag(), "panic", r)
		}
	}()

	handler(event)
}
