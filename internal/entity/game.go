package entity

// Game pairs a board with the mark whose turn it is. A Game is never mutated
// in place: every accepted move produces a new Game.
type Game struct {
	Board Board
	Turn  Mark
}

func NewGame(first Mark) Game {
	return Game{
		Board: Board{},
		Turn:  first,
	}
}

// Play - places the current mark on the cell and passes the turn.
// An occupied or out-of-range cell returns the game unchanged.
func (that Game) Play(cell Cell) Game {
	if !that.Board.IsEmpty(cell) {
		return that
	}

	next := Game{
		Board: that.Board.Clone(),
		Turn:  that.Turn.Opponent(),
	}
	next.Board.Place(cell, that.Turn)

	return next
}
