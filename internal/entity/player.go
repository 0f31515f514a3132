package entity

const (
	Player1ID = "player1"
	Player2ID = "player2"
)

// Player names one participant of a multiplayer session.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
