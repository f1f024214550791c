// Package ui renders the game in the terminal and feeds typed moves back to
// the bus. It is a pure collaborator: everything it shows comes from event
// payloads, it never reads the board from the engine.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tgonzalez89/tictactoe/internal/entity"
	"github.com/tgonzalez89/tictactoe/internal/eventbus"
)

var ErrMalformedMove = errors.New("malformed move, expected: row col")

// Terminal subscribes to state:updated, move:invalid and input:enable.
// Rendering happens inline in the handlers; the blocking input loop runs in
// Run and is woken through the prompts channel.
type Terminal struct {
	logger *slog.Logger
	bus    *eventbus.Bus
	in     io.Reader

	prompts chan entity.Mark
}

func NewTerminal(logger *slog.Logger, bus *eventbus.Bus, in io.Reader) *Terminal {
	that := &Terminal{
		logger:  logger.With("component", "terminal"),
		bus:     bus,
		in:      in,
		prompts: make(chan entity.Mark, 1),
	}

	bus.Subscribe(eventbus.TagStateUpdated, that.onStateUpdated)
	bus.Subscribe(eventbus.TagInvalidMove, that.onInvalidMove)
	bus.Subscribe(eventbus.TagEnableInput, that.onEnableInput)

	return that
}

// Run reads one move per prompt from the input stream and publishes it.
// Reading from a terminal cannot be interrupted; the loop checks the context
// between prompts and the process teardown handles the rest.
func (that *Terminal) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(that.in)

	for {
		select {
		case <-ctx.Done():
			return nil
		case mark := <-that.prompts:
			pterm.Info.Printfln("Player %s, enter your move as: row col (each 0-%d)", mark, entity.BoardSize-1)

			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}

			row, col, err := ParseMove(scanner.Text())
			if err != nil {
				pterm.Error.Println(err)
				that.enqueuePrompt(mark)
				continue
			}

			that.bus.Publish(eventbus.MoveRequested{Player: mark, Row: row, Col: col})
		}
	}
}

// ParseMove turns a "row col" line into board coordinates.
func ParseMove(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedMove, line)
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedMove, line)
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedMove, line)
	}

	return row, col, nil
}

func (that *Terminal) onStateUpdated(event eventbus.Event) {
	state, ok := event.(eventbus.StateUpdated)
	if !ok {
		return
	}

	pterm.DefaultBox.WithTitle("tic-tac-toe").Println(RenderBoard(state.Board))

	switch {
	case state.Result.IsDraw():
		pterm.Info.Println("Game over: draw")
	case state.Result.IsFinished():
		pterm.Success.Printfln("Game over: player %s wins", state.Result.Winner)
	}
}

func (that *Terminal) onInvalidMove(event eventbus.Event) {
	rejected, ok := event.(eventbus.InvalidMove)
	if !ok {
		return
	}

	pterm.Error.Printfln("Move by %s rejected: %s", rejected.Player, rejected.Reason)
}

func (that *Terminal) onEnableInput(event eventbus.Event) {
	enable, ok := event.(eventbus.EnableInput)
	if !ok {
		return
	}

	that.enqueuePrompt(enable.Player)
}

func (that *Terminal) enqueuePrompt(mark entity.Mark) {
	select {
	case that.prompts <- mark:
	default:
		that.logger.Warn("dropping prompt, input already pending", "mark", mark)
	}
}

// RenderBoard draws the grid with dots for empty cells.
func RenderBoard(board entity.Board) string {
	var sb strings.Builder

	for i, row := range board {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell == entity.EmptyCell {
				cells[j] = "."
			} else {
				cells[j] = string(cell)
			}
		}

		sb.WriteString(" " + strings.Join(cells, " | "))
		if i < len(board)-1 {
			sb.WriteString("\n---+---+---\n")
		}
	}

	return sb.String()
}
