package tictactoe

import "github.com/rocketscienceinc/tictactoe-link/internal/entity"

type Result int

const (
	ResultOngoing Result = iota
	ResultWin
	ResultDraw
)

func (that Result) String() string {
	switch that {
	case ResultWin:
		return "win"
	case ResultDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

// WinLines lists every winning line in scan order: rows, then columns, then diagonals.
var WinLines = [][3]entity.Cell{
	{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
	{{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}},
	{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}},
	{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 2, Col: 1}},
	{{Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 2}, {Row: 1, Col: 1}, {Row: 2, Col: 0}},
}

// Winner - returns the mark of the first uniform, fully populated line.
func Winner(board entity.Board) (entity.Mark, bool) {
	for _, line := range WinLines {
		a, okA := board.MarkAt(line[0])
		b, okB := board.MarkAt(line[1])
		c, okC := board.MarkAt(line[2])

		if okA && okB && okC && a == b && b == c {
			return a, true
		}
	}

	return "", false
}

func IsDraw(board entity.Board) bool {
	_, won := Winner(board)
	return !won && board.IsFull()
}

// IsTerminal - reports whether the board has a winner or no empty cells.
func IsTerminal(board entity.Board) bool {
	_, won := Winner(board)
	return won || board.IsFull()
}

// Evaluate - returns the result of the board and the winning mark, if any.
func Evaluate(board entity.Board) (Result, entity.Mark) {
	if winner, ok := Winner(board); ok {
		return ResultWin, winner
	}

	if board.IsFull() {
		return ResultDraw, ""
	}

	return ResultOngoing, ""
}
