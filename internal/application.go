package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tgonzalez89/tictactoe/internal/apperror"
	"github.com/tgonzalez89/tictactoe/internal/config"
	"github.com/tgonzalez89/tictactoe/internal/engine"
	"github.com/tgonzalez89/tictactoe/internal/entity"
	"github.com/tgonzalez89/tictactoe/internal/eventbus"
	"github.com/tgonzalez89/tictactoe/internal/player"
	"github.com/tgonzalez89/tictactoe/internal/transport/tcp"
	"github.com/tgonzalez89/tictactoe/internal/transport/websocket"
	"github.com/tgonzalez89/tictactoe/internal/ui"
)

// shutdownGrace lets final records flush to the peer and the screen before
// the session context is torn down.
const shutdownGrace = 500 * time.Millisecond

type worker struct {
	name string
	run  func(ctx context.Context) error
}

// RunApp wires one game session: a single bus instance handed to every
// component, participants per configuration, and in network mode one framed
// channel to the peer. Only the host side owns an engine; the client is a
// pure relay.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	bus := eventbus.New(logger)

	terminal := ui.NewTerminal(logger, bus, os.Stdin)
	workers := []worker{{name: "terminal", run: terminal.Run}}

	var gameEngine *engine.Engine

	switch {
	case conf.Mode == config.ModeLocal:
		addParticipant(logger, bus, conf.PlayerX, entity.PlayerX, &workers)
		addParticipant(logger, bus, conf.PlayerO, entity.PlayerO, &workers)

		gameEngine = engine.New(logger, bus)

	case conf.Role == config.RoleHost:
		log.Info("waiting for a peer to connect", "addr", conf.ListenAddr)

		channel, err := tcp.Listen(ctx, logger, conf.ListenAddr)
		if err != nil {
			return fmt.Errorf("could not accept peer connection: %w", err)
		}
		defer channel.Close()

		// The host always plays X; the remote peer is assigned O.
		relay, err := player.NewHostRelay(ctx, logger, bus, entity.PlayerO, channel)
		if err != nil {
			return fmt.Errorf("could not set up remote player: %w", err)
		}
		workers = append(workers, worker{name: "host-relay", run: relay.Run})

		addParticipant(logger, bus, conf.PlayerX, entity.PlayerX, &workers)

		gameEngine = engine.New(logger, bus)

	default:
		log.Info("connecting to host", "addr", conf.ConnectAddr)

		channel, err := tcp.Dial(ctx, logger, conf.ConnectAddr)
		if err != nil {
			return fmt.Errorf("could not connect to host: %w", err)
		}
		defer channel.Close()

		relay, err := player.NewClientRelay(ctx, logger, bus, channel)
		if err != nil {
			return fmt.Errorf("could not join game: %w", err)
		}
		workers = append(workers, worker{name: "client-relay", run: relay.Run})

		addParticipant(logger, bus, conf.PlayerKind(string(relay.Mark())), relay.Mark(), &workers)
	}

	if conf.SpectatePort != "" {
		spectator := websocket.New(logger, bus)
		workers = append(workers, worker{name: "spectator", run: func(ctx context.Context) error {
			log.Info("starting spectator server", "port", conf.SpectatePort)
			return spectator.Start(ctx, conf.SpectatePort)
		}})
	}

	// End the session shortly after the game reaches a terminal result.
	var gameOver atomic.Bool
	bus.Subscribe(eventbus.TagStateUpdated, func(event eventbus.Event) {
		state, ok := event.(eventbus.StateUpdated)
		if !ok || !state.Result.IsFinished() {
			return
		}
		gameOver.Store(true)
		time.AfterFunc(shutdownGrace, cancel)
	})

	errCh := make(chan error, len(workers))
	for _, w := range workers {
		go func(w worker) {
			if err := w.run(ctx); err != nil {
				errCh <- fmt.Errorf("%s: %w", w.name, err)
			}
		}(w)
	}

	if gameEngine != nil {
		gameEngine.Start()
	}

	select {
	case err := <-errCh:
		// The peer tearing the connection down after the final state is a
		// normal end of session, not a failure.
		if gameOver.Load() && errors.Is(err, apperror.ErrChannelClosed) {
			return nil
		}
		log.Error("worker failed", "error", err)
		return err
	case <-ctx.Done():
		log.Info("session finished, shutting down")
		return nil
	}
}

func addParticipant(logger *slog.Logger, bus *eventbus.Bus, kind string, mark entity.Mark, workers *[]worker) {
	if kind == config.KindBot {
		rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
		bot := player.NewBot(logger, bus, mark, rng)
		*workers = append(*workers, worker{name: "bot-" + string(mark), run: bot.Run})
		return
	}

	player.NewLocal(bus, mark)
}
