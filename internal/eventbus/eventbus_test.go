package eventbus

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tgonzalez89/tictactoe/internal/entity"
)

func newTestBus() *Bus {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBus_Publish(t *testing.T) {
	t.Run("Invokes all handlers for the tag exactly once, in subscription order", func(t *testing.T) {
		// Given: three handlers subscribed to turn:start
		bus := newTestBus()

		var order []int
		for i := 0; i < 3; i++ {
			i := i
			bus.Subscribe(TagStartTurn, func(Event) {
				order = append(order, i)
			})
		}

		// When: one turn:start event is published
		bus.Publish(StartTurn{Player: entity.PlayerX})

		// Then: every handler ran once, in the order subscribed
		assert.Equal(t, []int{0, 1, 2}, order)
	})

	t.Run("Handlers for other tags are not invoked", func(t *testing.T) {
		// Given: a handler subscribed to move:requested
		bus := newTestBus()

		calls := 0
		bus.Subscribe(TagMoveRequested, func(Event) {
			calls++
		})

		// When: an event with a different tag is published
		bus.Publish(StartTurn{Player: entity.PlayerX})

		// Then: the handler did not run
		assert.Zero(t, calls)
	})

	t.Run("Handlers receive the published event value", func(t *testing.T) {
		// Given: a handler capturing the event
		bus := newTestBus()

		var received Event
		bus.Subscribe(TagMoveRequested, func(event Event) {
			received = event
		})

		// When: a move request is published
		bus.Publish(MoveRequested{Player: entity.PlayerO, Row: 1, Col: 2})

		// Then: the handler saw the same value
		assert.Equal(t, MoveRequested{Player: entity.PlayerO, Row: 1, Col: 2}, received)
	})

	t.Run("A panicking handler does not stop the remaining handlers", func(t *testing.T) {
		// Given: a panicking handler subscribed before a well-behaved one
		bus := newTestBus()

		bus.Subscribe(TagStartTurn, func(Event) {
			panic("boom")
		})

		calls := 0
		bus.Subscribe(TagStartTurn, func(Event) {
			calls++
		})

		// When: an event is published
		bus.Publish(StartTurn{Player: entity.PlayerX})

		// Then: the publish survived and the second handler still ran
		assert.Equal(t, 1, calls)
	})

	t.Run("A handler may publish from within its own invocation", func(t *testing.T) {
		// Given: a turn:start handler that publishes input:enable inline
		bus := newTestBus()

		var got []Tag
		bus.Subscribe(TagStartTurn, func(event Event) {
			got = append(got, event.Tag())
			bus.Publish(EnableInput{Player: entity.PlayerX})
		})
		bus.Subscribe(TagEnableInput, func(event Event) {
			got = append(got, event.Tag())
		})

		// When: turn:start is published
		bus.Publish(StartTurn{Player: entity.PlayerX})

		// Then: the reentrant publish ran inline, depth-first
		assert.Equal(t, []Tag{TagStartTurn, TagEnableInput}, got)
	})

	t.Run("A handler may subscribe from within its own invocation", func(t *testing.T) {
		// Given: a handler that registers another handler for the same tag
		bus := newTestBus()

		lateCalls := 0
		bus.Subscribe(TagStartTurn, func(Event) {
			bus.Subscribe(TagStartTurn, func(Event) {
				lateCalls++
			})
		})

		// When: publishing once during registration and once after
		bus.Publish(StartTurn{Player: entity.PlayerX})
		bus.Publish(StartTurn{Player: entity.PlayerX})

		// Then: the late handler only saw the publish after it registered
		assert.Equal(t, 1, lateCalls)
	})
}

func TestBus_Concurrency(t *testing.T) {
	t.Run("Publish and Subscribe are safe under concurrent callers", func(t *testing.T) {
		// Given: a bus hammered by concurrent subscribers and publishers
		bus := newTestBus()

		var calls atomic.Int64
		var wg sync.WaitGroup

		for i := 0; i < 8; i++ {
			wg.Add(2)

			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					bus.Subscribe(TagMoveRequested, func(Event) {
						calls.Add(1)
					})
				}
			}()

			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					bus.Publish(MoveRequested{Player: entity.PlayerX})
				}
			}()
		}

		// When: all goroutines finish
		wg.Wait()

		// Then: the registry is intact and a final publish reaches every handler
		calls.Store(0)
		bus.Publish(MoveRequested{Player: entity.PlayerX})
		assert.Equal(t, int64(800), calls.Load())
	})
}
