package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/session"
)

var ErrUnknownCommand = errors.New("unknown command")

type CommandKind int

const (
	CommandMove CommandKind = iota
	CommandNew
	CommandQuit
	CommandChoose
	CommandPeers
)

type Command struct {
	Kind   CommandKind
	Cell   entity.Cell
	Choice session.Choice
}

// ParseCommand - parses one line of player input. Moves are "row col", both counted from 1.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))

	switch len(fields) {
	case 1:
		switch fields[0] {
		case "q", "quit", "exit":
			return Command{Kind: CommandQuit}, nil
		case "n", "new":
			return Command{Kind: CommandNew}, nil
		case "me":
			return Command{Kind: CommandChoose, Choice: session.ChoiceMe}, nil
		case "opponent", "them":
			return Command{Kind: CommandChoose, Choice: session.ChoiceOpponent}, nil
		case "peers":
			return Command{Kind: CommandPeers}, nil
		}
	case 2:
		row, rowErr := strconv.Atoi(fields[0])
		col, colErr := strconv.Atoi(fields[1])
		if rowErr != nil || colErr != nil {
			break
		}

		cell := entity.Cell{Row: row - 1, Col: col - 1}
		if !cell.InRange() {
			return Command{}, fmt.Errorf("%w: rows and columns go from 1 to %d", ErrUnknownCommand, entity.BoardSize)
		}

		return Command{Kind: CommandMove, Cell: cell}, nil
	}

	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
}
