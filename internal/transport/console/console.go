package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/tictactoe"
)

var ErrPeerDisconnected = errors.New("peer disconnected")

// Console drives games from line-based terminal input.
type Console struct {
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
}

func New(logger *slog.Logger, in io.Reader, out io.Writer) *Console {
	return &Console{
		logger: logger.With("component", "console"),
		in:     in,
		out:    out,
	}
}

// readLines - forwards input lines until EOF or cancellation. The channel is closed on EOF.
func (that *Console) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(that.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			that.logger.Error("failed to read input", "error", err)
		}
	}()

	return lines
}

func (that *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(that.out, format, args...); err != nil {
		that.logger.Error("failed to write output", "error", err)
	}
}

func (that *Console) render(game entity.Game) {
	that.printf("\n   1 2 3\n")
	for row, line := range strings.Split(game.Board.String(), "\n") {
		that.printf("%d  %s\n", row+1, strings.Join(strings.Split(line, ""), " "))
	}

	switch result, winner := tictactoe.Evaluate(game.Board); result {
	case tictactoe.ResultWin:
		that.printf("%s wins! Type \"new\" to play again or \"quit\".\n", winner)
	case tictactoe.ResultDraw:
		that.printf("Draw! Type \"new\" to play again or \"quit\".\n")
	default:
		that.printf("%s to move.\n", game.Turn)
	}
}
