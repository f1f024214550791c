// Package player holds the bus-side participants: the local human proxy, the
// bot, and the two network relays. Every participant subscribes itself at
// construction and only ever produces move:requested events in response to a
// turn:start addressed to its own mark.
//
// Participants that publish move requests do so from their own goroutine
// (bot worker, relay receive loop, UI input loop), never synchronously from
// inside a turn:start dispatch: the engine holds its session mutex while
// publishing, so a synchronous reply would re-enter it.
package player

import "github.com/tgonzalez89/tictactoe/internal/entity"

// Participant is a move source bound to one mark.
type Participant interface {
	Mark() entity.Mark
}
