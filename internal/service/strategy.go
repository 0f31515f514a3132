package service

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe-link/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/tictactoe"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Strategy picks the next cell for the given mark. The board must have at
// least one empty cell.
type Strategy interface {
	SelectMove(board entity.Board, mark entity.Mark) (entity.Cell, error)
}

// NewStrategy - returns the strategy matching the difficulty level.
func NewStrategy(difficulty string, rng *rand.Rand) (Strategy, error) {
	switch difficulty {
	case DifficultyEasy:
		return NewRandomStrategy(rng), nil
	case DifficultyMedium:
		return NewMixedStrategy(rng), nil
	case DifficultyHard:
		return NewMinimaxStrategy(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
}

// RandomStrategy picks a uniformly random empty cell.
type RandomStrategy struct {
	rng *rand.Rand
}

func NewRandomStrategy(rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rng: rng}
}

func (that *RandomStrategy) SelectMove(board entity.Board, _ entity.Mark) (entity.Cell, error) {
	cells := board.AvailableCells()
	if len(cells) == 0 {
		return entity.Cell{}, apperror.ErrNoAvailableMoves
	}

	return cells[that.intN(len(cells))], nil
}

func (that *RandomStrategy) intN(n int) int {
	if that.rng == nil {
		return rand.IntN(n) //nolint: gosec // it's ok
	}
	return that.rng.IntN(n)
}

// MixedStrategy flips a fair coin on every call: heads searches, tails plays at random.
type MixedStrategy struct {
	random  *RandomStrategy
	minimax *MinimaxStrategy
}

func NewMixedStrategy(rng *rand.Rand) *MixedStrategy {
	return &MixedStrategy{
		random:  NewRandomStrategy(rng),
		minimax: NewMinimaxStrategy(),
	}
}

func (that *MixedStrategy) SelectMove(board entity.Board, mark entity.Mark) (entity.Cell, error) {
	if that.random.intN(2) == 0 {
		return that.minimax.SelectMove(board, mark)
	}

	return that.random.SelectMove(board, mark)
}

// MinimaxStrategy searches the whole game tree with alpha-beta pruning.
// The mover is the maximizing side. Ties go to the earliest cell in row-major order.
type MinimaxStrategy struct{}

func NewMinimaxStrategy() *MinimaxStrategy {
	return &MinimaxStrategy{}
}

func (that *MinimaxStrategy) SelectMove(board entity.Board, mark entity.Mark) (entity.Cell, error) {
	cells := board.AvailableCells()
	if len(cells) == 0 {
		return entity.Cell{}, apperror.ErrNoAvailableMoves
	}

	bestScore := math.MinInt
	bestMove := cells[0]

	for _, cell := range cells {
		next := board.Clone()
		next.Place(cell, mark)

		score := minimax(next, mark.Opponent(), mark, math.MinInt, math.MaxInt)
		if score > bestScore {
			bestScore = score
			bestMove = cell
		}
	}

	return bestMove, nil
}

// Score - returns the value of the board for the maximizer under perfect play
// when toMove is about to move: 1 for a maximizer win, -1 for a loss, 0 for a draw.
func (that *MinimaxStrategy) Score(board entity.Board, toMove, maximizer entity.Mark) int {
	return minimax(board, toMove, maximizer, math.MinInt, math.MaxInt)
}

func minimax(board entity.Board, toMove, maximizer entity.Mark, alpha, beta int) int {
	if winner, ok := tictactoe.Winner(board); ok {
		if winner == maximizer {
			return 1
		}
		return -1
	}

	cells := board.AvailableCells()
	if len(cells) == 0 {
		return 0
	}

	if toMove == maximizer {
		bestScore := math.MinInt
		for _, cell := range cells {
			next := board.Clone()
			next.Place(cell, toMove)

			bestScore = max(bestScore, minimax(next, toMove.Opponent(), maximizer, alpha, beta))
			alpha = max(alpha, bestScore)
			if beta <= alpha {
				break
			}
		}
		return bestScore
	}

	bestScore := math.MaxInt
	for _, cell := range cells {
		next := board.Clone()
		next.Place(cell, toMove)

		bestScore = min(bestScore, minimax(next, toMove.Opponent(), maximizer, alpha, beta))
		beta = min(beta, bestScore)
		if beta <= alpha {
			break
		}
	}
	return bestScore
}
