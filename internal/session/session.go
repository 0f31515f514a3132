package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-link/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
)

const inboundBuffer = 64

type State int

const (
	StateDisconnected State = iota
	StateListening
	StateDialing
	StateAwaitingDecision
	StateDecided
	StateClosed
)

func (that State) String() string {
	switch that {
	case StateListening:
		return "listening"
	case StateDialing:
		return "dialing"
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateDecided:
		return "decided"
	case StateClosed:
		return "closed"
	default:
		return "disconnected"
	}
}

type EventKind int

const (
	EventIgnored EventKind = iota
	EventDecided
	EventGameState
	EventDisconnected
)

// Event is the outcome of one inbound message or transport notification.
type Event struct {
	Kind       EventKind
	LocalFirst bool
	Game       entity.Game
	Reset      bool
	Err        error
}

// Session drives the first-mover handshake over a Channel and relays game
// state afterwards. All methods except the channel callbacks must be called
// from a single owner goroutine.
type Session struct {
	logger  *slog.Logger
	channel Channel
	self    string

	peer       Peer
	state      State
	localFirst bool

	inbound     chan []byte
	disconnects chan error
	done        chan struct{}
	closeOnce   sync.Once
}

func New(logger *slog.Logger, channel Channel, self string) *Session {
	that := &Session{
		logger:      logger.With("component", "session", "self", self),
		channel:     channel,
		self:        self,
		state:       StateDisconnected,
		inbound:     make(chan []byte, inboundBuffer),
		disconnects: make(chan error, 1),
		done:        make(chan struct{}),
	}

	channel.OnMessage(that.enqueue)
	channel.OnDisconnect(that.disconnected)

	return that
}

func (that *Session) State() State {
	return that.state
}

func (that *Session) Peer() Peer {
	return that.peer
}

// LocalFirst - reports whether the local player moves first. Only meaningful once decided.
func (that *Session) LocalFirst() bool {
	return that.localFirst
}

func (that *Session) PairedPeers(ctx context.Context) []Peer {
	return that.channel.PairedPeers(ctx)
}

// Host - listens and waits for a single peer to connect.
func (that *Session) Host(ctx context.Context) error {
	log := that.logger.With("method", "Host")

	if that.state != StateDisconnected {
		return fmt.Errorf("%w: host from %s", apperror.ErrInvalidTransition, that.state)
	}

	if err := that.channel.Listen(ctx); err != nil {
		log.Error("failed to listen", "error", err)
		return fmt.Errorf("failed to listen: %w", err)
	}
	that.state = StateListening

	peer, err := that.channel.AwaitConnection(ctx)
	if err != nil {
		that.state = StateDisconnected
		log.Error("failed to accept connection", "error", err)
		return fmt.Errorf("failed to accept connection: %w", err)
	}

	that.connected(peer)
	log.Info("peer connected", "peer", peer.Name)

	return nil
}

// Join - dials the peer and waits for the connection.
func (that *Session) Join(ctx context.Context, peer Peer) error {
	log := that.logger.With("method", "Join")

	if that.state != StateDisconnected {
		return fmt.Errorf("%w: join from %s", apperror.ErrInvalidTransition, that.state)
	}

	that.state = StateDialing
	if err := that.channel.Dial(ctx, peer.Address); err != nil {
		that.state = StateDisconnected
		log.Error("failed to dial peer", "peer", peer.Address, "error", err)
		return fmt.Errorf("failed to dial %s: %w", peer.Address, err)
	}

	that.connected(peer)
	log.Info("connected to peer", "peer", peer.Address)

	return nil
}

func (that *Session) connected(peer Peer) {
	that.peer = peer
	that.state = StateAwaitingDecision
}

// Decide - sends the local first-mover decision to the peer.
func (that *Session) Decide(choice Choice) error {
	if that.state != StateAwaitingDecision {
		return fmt.Errorf("%w: decide from %s", apperror.ErrInvalidTransition, that.state)
	}

	if !choice.IsValid() {
		return fmt.Errorf("%w: choice %q", apperror.ErrInvalidTransition, choice)
	}

	if err := that.send(NewDecisionMessage(that.self, that.peer.Name, choice)); err != nil {
		return err
	}

	that.state = StateDecided
	that.localFirst = choice == ChoiceMe
	that.logger.Info("first mover decided locally", "local_first", that.localFirst)

	return nil
}

// Broadcast - sends the current game to the peer.
func (that *Session) Broadcast(game entity.Game, reset bool) error {
	if that.state != StateDecided {
		return fmt.Errorf("%w: broadcast from %s", apperror.ErrInvalidTransition, that.state)
	}

	return that.send(NewStateMessage(that.self, that.peer.Name, game, reset))
}

func (that *Session) send(msg *entity.Message) error {
	payload, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	that.channel.Send(payload)

	return nil
}

// Handle - applies one inbound payload to the session.
func (that *Session) Handle(payload []byte) Event {
	log := that.logger.With("method", "Handle")

	msg, err := entity.DecodeMessage(payload)
	if err != nil {
		log.Debug("ignoring payload", "error", err)
		return Event{Kind: EventIgnored}
	}

	choice, isDecision := decisionChoice(msg)

	switch that.state {
	case StateAwaitingDecision:
		if !isDecision {
			log.Debug("ignoring non-decision payload before decision")
			return Event{Kind: EventIgnored}
		}

		that.state = StateDecided
		// the sender's "opponent goes first" is the receiver going first
		that.localFirst = choice == ChoiceOpponent
		log.Info("first mover decided by peer", "local_first", that.localFirst)

		return Event{Kind: EventDecided, LocalFirst: that.localFirst}
	case StateDecided:
		if isDecision {
			log.Warn("ignoring second decision")
			return Event{Kind: EventIgnored}
		}

		game, err := gameFromState(msg.GameState)
		if err != nil {
			log.Debug("ignoring game state", "error", err)
			return Event{Kind: EventIgnored}
		}

		return Event{Kind: EventGameState, Game: game, Reset: msg.GameState.Reset}
	default:
		return Event{Kind: EventIgnored}
	}
}

// Next - blocks until the next inbound message or disconnect and applies it.
func (that *Session) Next(ctx context.Context) (Event, error) {
	select {
	case payload := <-that.inbound:
		return that.Handle(payload), nil
	case err := <-that.disconnects:
		return that.HandleDisconnect(err), nil
	case <-that.done:
		return Event{}, apperror.ErrChannelClosed
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// HandleDisconnect - applies a transport disconnect reported by the channel.
func (that *Session) HandleDisconnect(err error) Event {
	if that.state != StateClosed {
		that.state = StateDisconnected
	}
	that.logger.Warn("peer disconnected", "error", err)

	return Event{Kind: EventDisconnected, Err: err}
}

// Inbound - returns the queue of raw inbound payloads, to be passed to Handle by the owner.
func (that *Session) Inbound() <-chan []byte {
	return that.inbound
}

// Disconnects - returns the queue of transport disconnects, to be passed to HandleDisconnect.
func (that *Session) Disconnects() <-chan error {
	return that.disconnects
}

// Done - is closed once the session is closed.
func (that *Session) Done() <-chan struct{} {
	return that.done
}

// Close - releases the channel. Safe to call repeatedly.
func (that *Session) Close() error {
	var err error
	that.closeOnce.Do(func() {
		close(that.done)
		if closeErr := that.channel.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close channel: %w", closeErr)
		}
	})
	that.state = StateClosed

	return err
}

func (that *Session) enqueue(payload []byte) {
	select {
	case that.inbound <- payload:
	case <-that.done:
	}
}

func (that *Session) disconnected(err error) {
	select {
	case that.disconnects <- err:
	default:
	}
}
