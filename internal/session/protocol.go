package session

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/tictactoe"
)

// Choice is the first-mover code written by the deciding side.
type Choice string

const (
	ChoiceMe       Choice = "0"
	ChoiceOpponent Choice = "1"
)

func (that Choice) IsValid() bool {
	return that == ChoiceMe || that == ChoiceOpponent
}

// NewDecisionMessage - builds the single decision message. The board is always empty.
func NewDecisionMessage(self, peer string, choice Choice) *entity.Message {
	return &entity.Message{
		GameState: &entity.GameState{
			Board:                 entity.BoardSnapshot(entity.Board{}),
			Turn:                  entity.TurnX,
			Winner:                entity.EncodeWinner("", false),
			ConnectionEstablished: true,
		},
		Metadata: &entity.Metadata{
			Choices:  participants(self, peer),
			MiniGame: &entity.MiniGame{Player1Choice: string(choice)},
		},
	}
}

// NewStateMessage - builds a board-state broadcast.
func NewStateMessage(self, peer string, game entity.Game, reset bool) *entity.Message {
	winner, won := tictactoe.Winner(game.Board)

	return &entity.Message{
		GameState: &entity.GameState{
			Board:                 entity.BoardSnapshot(game.Board),
			Turn:                  entity.EncodeTurn(game.Turn),
			Winner:                entity.EncodeWinner(winner, won),
			Draw:                  tictactoe.IsDraw(game.Board),
			ConnectionEstablished: true,
			Reset:                 reset,
		},
		Metadata: &entity.Metadata{
			Choices:  participants(self, peer),
			MiniGame: &entity.MiniGame{},
		},
	}
}

func participants(self, peer string) map[string]entity.Player {
	return map[string]entity.Player{
		"0": {ID: entity.Player1ID, Name: self},
		"1": {ID: entity.Player2ID, Name: peer},
	}
}

// decisionChoice - returns the sender's choice if the message is a decision.
func decisionChoice(msg *entity.Message) (Choice, bool) {
	if !msg.GameState.ConnectionEstablished || msg.Metadata == nil || msg.Metadata.MiniGame == nil {
		return "", false
	}

	choice := Choice(msg.Metadata.MiniGame.Choice())
	if choice == "" {
		return "", false
	}

	return choice, true
}

func gameFromState(state *entity.GameState) (entity.Game, error) {
	board, err := entity.BoardFromSnapshot(state.Board)
	if err != nil {
		return entity.Game{}, fmt.Errorf("failed to read board: %w", err)
	}

	turn, ok := entity.DecodeTurn(state.Turn)
	if !ok {
		return entity.Game{}, fmt.Errorf("%w: turn %q", entity.ErrMalformedMessage, state.Turn)
	}

	return entity.Game{Board: board, Turn: turn}, nil
}
