package service

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-link/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/tictactoe"
)

type BotService interface {
	MakeTurn(game entity.Game) (entity.Game, error)
}

type botService struct {
	strategy Strategy
}

func NewBotService(strategy Strategy) BotService {
	return &botService{
		strategy: strategy,
	}
}

// MakeTurn - plays the strategy's move for the mark whose turn it is.
func (that *botService) MakeTurn(game entity.Game) (entity.Game, error) {
	if tictactoe.IsTerminal(game.Board) {
		return game, apperror.ErrNoAvailableMoves
	}

	cell, err := that.strategy.SelectMove(game.Board, game.Turn)
	if err != nil {
		return game, fmt.Errorf("bot failed to select move: %w", err)
	}

	return game.Play(cell), nil
}
