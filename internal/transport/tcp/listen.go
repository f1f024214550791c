package tcp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
)

// Listen waits for exactly one peer connection on addr and wraps it in a
// channel. The listener itself is closed once the peer is connected; one
// channel endpoint corresponds to exactly one remote peer.
func Listen(ctx context.Context, logger *slog.Logger, addr string) (*Channel, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	defer listener.Close()

	// Accept has no context variant; closing the listener on cancellation
	// makes it return.
	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("accept canceled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to accept connection: %w", err)
	}

	return NewChannel(logger, conn), nil
}

// Dial connects to a listening peer at addr and wraps the connection.
func Dial(ctx context.Context, logger *slog.Logger, addr string) (*Channel, error) {
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	return NewChannel(logger, conn), nil
}
