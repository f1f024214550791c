// Package tcp carries wire messages between two processes over one reliable
// stream connection, one newline-terminated JSON record per message.
package tcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/tgonzalez89/tictactoe/internal/apperror"
)

const (
	inboxSize = 16

	// maxRecordSize bounds one record; a full board state is well under 1 KiB.
	maxRecordSize = 64 * 1024
)

// Channel is a duplex message channel over one established connection.
// A receive goroutine runs for the channel's lifetime; Close is idempotent
// and unblocks any in-flight Recv through the done channel, the single
// primitive both the wait and the shutdown observe.
type Channel struct {
	logger *slog.Logger
	conn   net.Conn

	sendMu sync.Mutex

	inbox chan Message
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func NewChannel(logger *slog.Logger, conn net.Conn) *Channel {
	that := &Channel{
		logger: logger.With("component", "channel", "remote", conn.RemoteAddr().String()),
		conn:   conn,
		inbox:  make(chan Message, inboxSize),
		done:   make(chan struct{}),
	}

	go that.readLoop()

	return that
}

// Send serializes and writes one record. Concurrent senders are serialized so
// two records are never interleaved on the wire. A write failure closes the
// channel and is reported to the caller.
func (that *Channel) Send(msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	raw = append(raw, '\n')

	that.sendMu.Lock()
	defer that.sendMu.Unlock()

	select {
	case <-that.done:
		return apperror.ErrChannelClosed
	default:
	}

	if _, err = that.conn.Write(raw); err != nil {
		_ = that.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

// Recv returns the next inbound record, blocking until one arrives, the
// context is done, or the channel is closed. After close it first drains
// records the receive loop already queued, then reports ErrChannelClosed.
func (that *Channel) Recv(ctx context.Context) (Message, error) {
	select {
	case msg := <-that.inbox:
		return msg, nil
	case <-that.done:
		select {
		case msg := <-that.inbox:
			return msg, nil
		default:
			return Message{}, apperror.ErrChannelClosed
		}
	case <-ctx.Done():
		return Message{}, fmt.Errorf("recv canceled: %w", ctx.Err())
	}
}

// Close releases the connection exactly once, even under concurrent calls.
func (that *Channel) Close() error {
	that.closeOnce.Do(func() {
		close(that.done)
		that.closeErr = that.conn.Close()
	})

	return that.closeErr
}

// Done is closed when the channel shuts down.
func (that *Channel) Done() <-chan struct{} {
	return that.done
}

// readLoop accumulates bytes until a record boundary, so a record split
// across stream reads is reassembled before parsing. Malformed records are
// discarded and the loop continues; only an I/O failure or peer disconnect
// ends the loop, which then closes the channel.
func (that *Channel) readLoop() {
	defer func() {
		_ = that.Close()
	}()

	scanner := bufio.NewScanner(that.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRecordSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			that.logger.Warn("discarding malformed record", "error", err)
			continue
		}

		if msg.Type == "" {
			that.logger.Warn("discarding record without a type")
			continue
		}

		select {
		case that.inbox <- msg:
		case <-that.done:
			return
		}
	}

	if err := scanner.Err(); err != nil && !isClosedConn(err) {
		that.logger.Error("connection read failed", "error", err)
	}
}

func isClosedConn(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
