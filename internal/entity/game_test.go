package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	// When: a new game is created with X moving first
	game := NewGame(MarkX)

	// Then: the board is empty and it is X's turn
	assert.Equal(t, MarkX, game.Turn)
	assert.Len(t, game.Board.AvailableCells(), BoardSize*BoardSize)
}

func TestGame_Play(t *testing.T) {
	t.Run("Successful move passes the turn", func(t *testing.T) {
		// Given: a new game
		game := NewGame(MarkX)

		// When: X plays the corner
		next := game.Play(Cell{Row: 0, Col: 0})

		// Then: the new game holds the mark and it is O's turn
		mark, ok := next.Board.MarkAt(Cell{Row: 0, Col: 0})
		require.True(t, ok)
		assert.Equal(t, MarkX, mark)
		assert.Equal(t, MarkO, next.Turn)
	})

	t.Run("Previous game is not mutated", func(t *testing.T) {
		// Given: a game after one move
		game := NewGame(MarkX).Play(Cell{Row: 0, Col: 0})
		snapshot := game

		// When: the next move is applied
		_ = game.Play(Cell{Row: 2, Col: 2})

		// Then: the earlier game still has a single mark
		assert.Equal(t, snapshot, game)
		assert.Len(t, game.Board.OccupiedCells(), 1)
	})

	t.Run("Occupied cell returns the same game", func(t *testing.T) {
		// Given: X holds the center
		game := NewGame(MarkX).Play(Cell{Row: 1, Col: 1})

		// When: O tries the center
		next := game.Play(Cell{Row: 1, Col: 1})

		// Then: nothing changes and it is still O's turn
		assert.Equal(t, game, next)
		assert.Equal(t, MarkO, next.Turn)
	})

	t.Run("Out of range cell returns the same game", func(t *testing.T) {
		game := NewGame(MarkO)

		next := game.Play(Cell{Row: -1, Col: 4})

		assert.Equal(t, game, next)
	})
}
