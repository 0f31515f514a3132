package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	emptyWireCell = " "

	TurnX = "0"
	TurnO = "1"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrInvalidWireCell  = errors.New("invalid board cell value")
)

// Message is the only payload exchanged between peers. It carries either the
// first-mover decision or a board-state broadcast.
type Message struct {
	GameState *GameState `json:"gameState"`
	Metadata  *Metadata  `json:"metadata"`
}

type GameState struct {
	Board                 [BoardSize][BoardSize]string `json:"board"`
	Turn                  string                       `json:"turn"`
	Winner                string                       `json:"winner"`
	Draw                  bool                         `json:"draw"`
	ConnectionEstablished bool                         `json:"connectionEstablished"`
	Reset                 bool                         `json:"reset"`
}

type Metadata struct {
	Choices  map[string]Player `json:"choices"`
	MiniGame *MiniGame         `json:"miniGame"`
}

// MiniGame is the two-slot "who goes first" record. The sender fills one
// slot, the other stays empty.
type MiniGame struct {
	Player1Choice string `json:"player1Choice"`
	Player2Choice string `json:"player2Choice"`
}

// Choice - returns the first non-empty slot.
func (that *MiniGame) Choice() string {
	if that.Player1Choice != "" {
		return that.Player1Choice
	}
	return that.Player2Choice
}

func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	if msg.GameState == nil {
		return nil, fmt.Errorf("%w: missing gameState", ErrMalformedMessage)
	}

	return &msg, nil
}

func (that *Message) Encode() ([]byte, error) {
	data, err := json.Marshal(that)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

// BoardSnapshot - converts a board into its wire grid, " " marking empty cells.
func BoardSnapshot(board Board) [BoardSize][BoardSize]string {
	var grid [BoardSize][BoardSize]string
	for row := range BoardSize {
		for col := range BoardSize {
			mark, ok := board.MarkAt(Cell{Row: row, Col: col})
			if !ok {
				grid[row][col] = emptyWireCell
				continue
			}
			grid[row][col] = string(mark)
		}
	}

	return grid
}

// BoardFromSnapshot - rebuilds a board from its wire grid.
func BoardFromSnapshot(grid [BoardSize][BoardSize]string) (Board, error) {
	var board Board
	for row := range BoardSize {
		for col := range BoardSize {
			switch value := grid[row][col]; Mark(value) {
			case MarkX, MarkO:
				board.Place(Cell{Row: row, Col: col}, Mark(value))
			default:
				if value != emptyWireCell && value != "" {
					return Board{}, fmt.Errorf("%w: %q at (%d,%d)", ErrInvalidWireCell, value, row, col)
				}
			}
		}
	}

	return board, nil
}

func EncodeTurn(mark Mark) string {
	if mark == MarkO {
		return TurnO
	}
	return TurnX
}

func DecodeTurn(turn string) (Mark, bool) {
	switch turn {
	case TurnX:
		return MarkX, true
	case TurnO:
		return MarkO, true
	default:
		return "", false
	}
}

// EncodeWinner - returns the wire winner value, " " when there is none.
func EncodeWinner(mark Mark, ok bool) string {
	if !ok {
		return emptyWireCell
	}
	return string(mark)
}
