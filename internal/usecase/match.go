package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-link/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/tictactoe"
)

type botService interface {
	MakeTurn(game entity.Game) (entity.Game, error)
}

// Match is a game between the local player and the bot.
type Match struct {
	logger *slog.Logger
	bot    botService
	human  entity.Mark
	game   entity.Game
}

// NewMatch - creates a match where the human plays the given mark. X always moves first.
func NewMatch(logger *slog.Logger, bot botService, human entity.Mark) *Match {
	if !human.IsValid() {
		human = entity.MarkX
	}

	return &Match{
		logger: logger.With("component", "match", "human", string(human)),
		bot:    bot,
		human:  human,
		game:   entity.NewGame(entity.MarkX),
	}
}

func (that *Match) Game() entity.Game {
	return that.game
}

func (that *Match) Human() entity.Mark {
	return that.human
}

// NewGame - resets the board. The bot opens when the human plays O.
func (that *Match) NewGame() (entity.Game, error) {
	that.game = entity.NewGame(entity.MarkX)

	if that.human == entity.MarkX {
		return that.game, nil
	}

	game, err := that.bot.MakeTurn(that.game)
	if err != nil {
		return that.game, fmt.Errorf("bot failed to open: %w", err)
	}
	that.game = game

	return that.game, nil
}

// MakeTurn - plays the human move and lets the bot reply while the game is ongoing.
// ErrGameFinished is returned together with the final game once it ends.
func (that *Match) MakeTurn(cell entity.Cell) (entity.Game, error) {
	log := that.logger.With("method", "MakeTurn")

	if err := validateMove(that.game, that.human, cell); err != nil {
		return that.game, err
	}

	that.game = that.game.Play(cell)
	if tictactoe.IsTerminal(that.game.Board) {
		logFinished(log, that.game, "human")
		return that.game, apperror.ErrGameFinished
	}

	game, err := that.bot.MakeTurn(that.game)
	if err != nil {
		log.Error("bot failed to make turn", "error", err)
		return that.game, fmt.Errorf("bot failed to make turn: %w", err)
	}
	that.game = game

	if tictactoe.IsTerminal(that.game.Board) {
		logFinished(log, that.game, "bot")
		return that.game, apperror.ErrGameFinished
	}

	return that.game, nil
}

func logFinished(log *slog.Logger, game entity.Game, lastMover string) {
	result, winner := tictactoe.Evaluate(game.Board)
	log.Info("game finished", "result", result.String(), "winner", string(winner), "last_mover", lastMover)
}

func validateMove(game entity.Game, mark entity.Mark, cell entity.Cell) error {
	if tictactoe.IsTerminal(game.Board) {
		return apperror.ErrGameFinished
	}

	if game.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if !cell.InRange() {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, cell.Row, cell.Col)
	}

	if !game.Board.IsEmpty(cell) {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrCellOccupied, cell.Row, cell.Col)
	}

	return nil
}

// IsFinished - reports whether err only signals the end of the game.
func IsFinished(err error) bool {
	return errors.Is(err, apperror.ErrGameFinished)
}
