package usecase

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-link/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/tictactoe"
)

type gameBroadcaster interface {
	LocalFirst() bool
	Broadcast(game entity.Game, reset bool) error
}

// Duel is a game between the local player and a remote peer once the first
// mover has been decided. The first mover plays X.
type Duel struct {
	logger *slog.Logger
	link   gameBroadcaster
	local  entity.Mark
	game   entity.Game
}

func NewDuel(logger *slog.Logger, link gameBroadcaster) *Duel {
	local := entity.MarkO
	if link.LocalFirst() {
		local = entity.MarkX
	}

	return &Duel{
		logger: logger.With("component", "duel", "local", string(local)),
		link:   link,
		local:  local,
		game:   entity.NewGame(entity.MarkX),
	}
}

func (that *Duel) Game() entity.Game {
	return that.game
}

func (that *Duel) Local() entity.Mark {
	return that.local
}

// IsLocalTurn - reports whether the local player is expected to move.
func (that *Duel) IsLocalTurn() bool {
	return !tictactoe.IsTerminal(that.game.Board) && that.game.Turn == that.local
}

// MakeTurn - plays the local move and sends the new state to the peer.
func (that *Duel) MakeTurn(cell entity.Cell) (entity.Game, error) {
	if err := validateMove(that.game, that.local, cell); err != nil {
		return that.game, err
	}

	that.game = that.game.Play(cell)
	if err := that.link.Broadcast(that.game, false); err != nil {
		return that.game, fmt.Errorf("failed to broadcast move: %w", err)
	}

	if tictactoe.IsTerminal(that.game.Board) {
		logFinished(that.logger.With("method", "MakeTurn"), that.game, "local")
		return that.game, apperror.ErrGameFinished
	}

	return that.game, nil
}

// Reset - starts a new game on both sides.
func (that *Duel) Reset() error {
	that.game = entity.NewGame(entity.MarkX)

	if err := that.link.Broadcast(that.game, true); err != nil {
		return fmt.Errorf("failed to broadcast reset: %w", err)
	}

	return nil
}

// Apply - replaces the local game with the peer's snapshot.
func (that *Duel) Apply(remote entity.Game, reset bool) (entity.Game, error) {
	log := that.logger.With("method", "Apply")

	if reset {
		that.game = entity.NewGame(entity.MarkX)
		log.Info("peer started a new game")

		return that.game, nil
	}

	that.game = remote
	if tictactoe.IsTerminal(that.game.Board) {
		logFinished(log, that.game, "peer")
		return that.game, apperror.ErrGameFinished
	}

	return that.game, nil
}
