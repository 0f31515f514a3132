package entity

import "strings"

const BoardSize = 3

type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"
)

// Opponent - returns the other mark.
func (that Mark) Opponent() Mark {
	if that == MarkX {
		return MarkO
	}
	return MarkX
}

func (that Mark) IsValid() bool {
	return that == MarkX || that == MarkO
}

// Cell is a (row, column) coordinate on the board.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Cell) InRange() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

type slot struct {
	mark     Mark
	occupied bool
}

// Board is a 3x3 grid of optional marks. It is a value type: assigning or
// cloning a Board yields an independent copy.
type Board struct {
	cells [BoardSize][BoardSize]slot
}

// Place - records the mark on an empty cell. Occupied or out-of-range cells are left untouched.
func (that *Board) Place(cell Cell, mark Mark) {
	if !cell.InRange() || that.cells[cell.Row][cell.Col].occupied {
		return
	}

	that.cells[cell.Row][cell.Col] = slot{mark: mark, occupied: true}
}

// MarkAt - returns the mark on the cell and whether the cell is occupied.
func (that *Board) MarkAt(cell Cell) (Mark, bool) {
	if !cell.InRange() {
		return "", false
	}

	s := that.cells[cell.Row][cell.Col]
	return s.mark, s.occupied
}

func (that *Board) IsEmpty(cell Cell) bool {
	_, occupied := that.MarkAt(cell)
	return cell.InRange() && !occupied
}

// AvailableCells - returns the empty cells in row-major order.
func (that *Board) AvailableCells() []Cell {
	return that.collect(false)
}

// OccupiedCells - returns the marked cells in row-major order.
func (that *Board) OccupiedCells() []Cell {
	return that.collect(true)
}

func (that *Board) collect(occupied bool) []Cell {
	cells := make([]Cell, 0, BoardSize*BoardSize)
	for row := range BoardSize {
		for col := range BoardSize {
			if that.cells[row][col].occupied == occupied {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}

	return cells
}

func (that *Board) IsFull() bool {
	return len(that.AvailableCells()) == 0
}

// Clone - returns an independent copy of the board.
func (that *Board) Clone() Board {
	return *that
}

// String renders the board as three lines, using "." for empty cells.
func (that *Board) String() string {
	var sb strings.Builder
	for row := range BoardSize {
		for col := range BoardSize {
			mark, ok := that.MarkAt(Cell{Row: row, Col: col})
			if !ok {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(string(mark))
		}
		if row < BoardSize-1 {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
