package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell")
	ErrNoAvailableMoves = errors.New("no available moves")

	ErrNotConnected      = errors.New("channel is not connected")
	ErrChannelClosed     = errors.New("channel is closed")
	ErrPeerUnavailable   = errors.New("peer is unavailable")
	ErrPermissionDenied  = errors.New("transport permission denied")
	ErrInvalidTransition = errors.New("invalid session state transition")
)
