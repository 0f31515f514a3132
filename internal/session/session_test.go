package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-link/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
)

var errRadioOff = errors.New("radio is off")

// pipeChannel is an in-memory Channel connected to another pipeChannel.
type pipeChannel struct {
	mu           sync.Mutex
	name         string
	remote       *pipeChannel
	onMessage    func([]byte)
	onDisconnect func(error)
	listenErr    error
	dialErr      error
	closeCalls   int
}

func newPipe(a, b string) (*pipeChannel, *pipeChannel) {
	left := &pipeChannel{name: a}
	right := &pipeChannel{name: b}
	left.remote = right
	right.remote = left
	return left, right
}

func (that *pipeChannel) Listen(context.Context) error { return that.listenErr }

func (that *pipeChannel) AwaitConnection(context.Context) (Peer, error) {
	return Peer{Name: that.remote.name, Address: that.remote.name}, nil
}

func (that *pipeChannel) Dial(context.Context, string) error { return that.dialErr }

func (that *pipeChannel) Send(payload []byte) {
	that.remote.mu.Lock()
	deliver := that.remote.onMessage
	that.remote.mu.Unlock()

	if deliver != nil {
		deliver(payload)
	}
}

func (that *pipeChannel) OnMessage(fn func([]byte)) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.onMessage = fn
}

func (that *pipeChannel) OnDisconnect(fn func(error)) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.onDisconnect = fn
}

func (that *pipeChannel) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.closeCalls++
	return nil
}

func (that *pipeChannel) PairedPeers(context.Context) []Peer {
	return []Peer{{Name: that.remote.name, Address: that.remote.name}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// connectedPair returns a hosting and a joining session that are both awaiting the decision.
func connectedPair(t *testing.T) (*Session, *Session, *pipeChannel, *pipeChannel) {
	t.Helper()

	hostChannel, joinChannel := newPipe("alice", "bob")
	host := New(discardLogger(), hostChannel, "alice")
	join := New(discardLogger(), joinChannel, "bob")

	ctx := context.Background()
	require.NoError(t, host.Host(ctx))
	require.NoError(t, join.Join(ctx, Peer{Name: "alice", Address: "alice"}))

	require.Equal(t, StateAwaitingDecision, host.State())
	require.Equal(t, StateAwaitingDecision, join.State())

	return host, join, hostChannel, joinChannel
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	event, err := s.Next(ctx)
	require.NoError(t, err)

	return event
}

func TestSession_Decide(t *testing.T) {
	t.Run("Receiver of 'me' lets the opponent go first", func(t *testing.T) {
		// Given: two connected sessions
		host, join, _, _ := connectedPair(t)

		// When: the host decides to go first
		require.NoError(t, host.Decide(ChoiceMe))

		// Then: the host moves first and the joiner learns it moves second
		assert.Equal(t, StateDecided, host.State())
		assert.True(t, host.LocalFirst())

		event := nextEvent(t, join)
		assert.Equal(t, EventDecided, event.Kind)
		assert.False(t, event.LocalFirst)
		assert.False(t, join.LocalFirst())
		assert.Equal(t, StateDecided, join.State())
	})

	t.Run("Receiver of 'opponent' goes first", func(t *testing.T) {
		// Given: two connected sessions
		host, join, _, _ := connectedPair(t)

		// When: the joiner lets the host go first
		require.NoError(t, join.Decide(ChoiceOpponent))

		// Then: the host goes first
		assert.False(t, join.LocalFirst())

		event := nextEvent(t, host)
		assert.Equal(t, EventDecided, event.Kind)
		assert.True(t, host.LocalFirst())
	})

	t.Run("Decision requires a connection", func(t *testing.T) {
		channel, _ := newPipe("alice", "bob")
		s := New(discardLogger(), channel, "alice")

		err := s.Decide(ChoiceMe)

		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
		assert.Equal(t, StateDisconnected, s.State())
	})

	t.Run("Unknown choice is rejected", func(t *testing.T) {
		host, _, _, _ := connectedPair(t)

		err := host.Decide(Choice("2"))

		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
		assert.Equal(t, StateAwaitingDecision, host.State())
	})

	t.Run("Double decision keeps each local outcome", func(t *testing.T) {
		// Given: both sides decide before reading the other's message
		host, join, _, _ := connectedPair(t)
		require.NoError(t, host.Decide(ChoiceMe))
		require.NoError(t, join.Decide(ChoiceMe))

		// When: each side reads the other's decision
		hostEvent := nextEvent(t, host)
		joinEvent := nextEvent(t, join)

		// Then: the late decisions are ignored and both think they go first
		assert.Equal(t, EventIgnored, hostEvent.Kind)
		assert.Equal(t, EventIgnored, joinEvent.Kind)
		assert.True(t, host.LocalFirst())
		assert.True(t, join.LocalFirst())
	})
}

func TestSession_Handle(t *testing.T) {
	t.Run("Malformed payloads are ignored", func(t *testing.T) {
		// Given: a session awaiting the decision
		_, join, _, _ := connectedPair(t)

		for _, payload := range []string{"", "hello", `{"metadata":{}}`, `[1,2,3]`} {
			// When: a payload that is not a message arrives
			event := join.Handle([]byte(payload))

			// Then: it is ignored and the state is unchanged
			assert.Equal(t, EventIgnored, event.Kind, "payload %q", payload)
			assert.Equal(t, StateAwaitingDecision, join.State())
		}
	})

	t.Run("Empty choice slots are not a decision", func(t *testing.T) {
		_, join, _, _ := connectedPair(t)
		payload, err := NewStateMessage("alice", "bob", entity.NewGame(entity.MarkX), false).Encode()
		require.NoError(t, err)

		event := join.Handle(payload)

		assert.Equal(t, EventIgnored, event.Kind)
		assert.Equal(t, StateAwaitingDecision, join.State())
	})

	t.Run("Decision without an established connection is ignored", func(t *testing.T) {
		_, join, _, _ := connectedPair(t)
		msg := NewDecisionMessage("alice", "bob", ChoiceMe)
		msg.GameState.ConnectionEstablished = false
		payload, err := msg.Encode()
		require.NoError(t, err)

		event := join.Handle(payload)

		assert.Equal(t, EventIgnored, event.Kind)
	})

	t.Run("Choice in the second slot is honoured", func(t *testing.T) {
		_, join, _, _ := connectedPair(t)
		msg := NewDecisionMessage("alice", "bob", "")
		msg.Metadata.MiniGame.Player2Choice = string(ChoiceOpponent)
		payload, err := msg.Encode()
		require.NoError(t, err)

		event := join.Handle(payload)

		assert.Equal(t, EventDecided, event.Kind)
		assert.True(t, event.LocalFirst)
	})

	t.Run("Game state is relayed once decided", func(t *testing.T) {
		// Given: a decided pair
		host, join, _, _ := connectedPair(t)
		require.NoError(t, host.Decide(ChoiceMe))
		nextEvent(t, join)

		// When: the host broadcasts its first move
		game := entity.NewGame(entity.MarkX).Play(entity.Cell{Row: 1, Col: 1})
		require.NoError(t, host.Broadcast(game, false))

		// Then: the joiner receives the same game
		event := nextEvent(t, join)
		assert.Equal(t, EventGameState, event.Kind)
		assert.Equal(t, game, event.Game)
		assert.False(t, event.Reset)
	})

	t.Run("Game state before decision is not relayed", func(t *testing.T) {
		host, _, _, _ := connectedPair(t)

		err := host.Broadcast(entity.NewGame(entity.MarkX), false)

		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})
}

func TestSession_Connect(t *testing.T) {
	t.Run("Listen failure leaves the session disconnected", func(t *testing.T) {
		// Given: a channel whose transport is unavailable
		channel, _ := newPipe("alice", "bob")
		channel.listenErr = errRadioOff
		s := New(discardLogger(), channel, "alice")

		// When: hosting
		err := s.Host(context.Background())

		// Then: the failure is returned and the state is unchanged
		require.ErrorIs(t, err, errRadioOff)
		assert.Equal(t, StateDisconnected, s.State())
	})

	t.Run("Dial failure leaves the session disconnected", func(t *testing.T) {
		channel, _ := newPipe("bob", "alice")
		channel.dialErr = apperror.ErrPermissionDenied
		s := New(discardLogger(), channel, "bob")

		err := s.Join(context.Background(), Peer{Name: "alice", Address: "alice"})

		require.ErrorIs(t, err, apperror.ErrPermissionDenied)
		assert.Equal(t, StateDisconnected, s.State())
	})

	t.Run("Cannot host twice", func(t *testing.T) {
		host, _, _, _ := connectedPair(t)

		err := host.Host(context.Background())

		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("Paired peers come from the channel", func(t *testing.T) {
		channel, _ := newPipe("alice", "bob")
		s := New(discardLogger(), channel, "alice")

		assert.Equal(t, []Peer{{Name: "bob", Address: "bob"}}, s.PairedPeers(context.Background()))
	})
}

func TestSession_Lifecycle(t *testing.T) {
	t.Run("Disconnect is surfaced as an event", func(t *testing.T) {
		// Given: a connected session
		host, _, hostChannel, _ := connectedPair(t)

		// When: the transport reports a disconnect
		hostChannel.onDisconnect(io.EOF)

		// Then: the owner sees a disconnect event
		event := nextEvent(t, host)
		assert.Equal(t, EventDisconnected, event.Kind)
		assert.ErrorIs(t, event.Err, io.EOF)
		assert.Equal(t, StateDisconnected, host.State())
	})

	t.Run("Close twice on a never connected session", func(t *testing.T) {
		// Given: a session that never connected
		channel, _ := newPipe("alice", "bob")
		s := New(discardLogger(), channel, "alice")

		// When: closing it twice
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		// Then: the channel is released once and Next reports the closed channel
		assert.Equal(t, 1, channel.closeCalls)
		assert.Equal(t, StateClosed, s.State())

		_, err := s.Next(context.Background())
		assert.ErrorIs(t, err, apperror.ErrChannelClosed)
	})

	t.Run("Next honours context cancellation", func(t *testing.T) {
		host, _, _, _ := connectedPair(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := host.Next(ctx)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSession_OwnerQueues(t *testing.T) {
	// Given: a decided pair
	host, join, _, joinChannel := connectedPair(t)
	require.NoError(t, host.Decide(ChoiceOpponent))

	// When: the owner drains the inbound queue itself
	var event Event
	select {
	case payload := <-join.Inbound():
		event = join.Handle(payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
	}

	// Then: the decision is applied as through Next
	assert.Equal(t, EventDecided, event.Kind)
	assert.True(t, join.LocalFirst())

	// And: disconnects arrive on their own queue
	joinChannel.onDisconnect(errRadioOff)
	select {
	case err := <-join.Disconnects():
		disconnect := join.HandleDisconnect(err)
		assert.ErrorIs(t, disconnect.Err, errRadioOff)
		assert.Equal(t, StateDisconnected, join.State())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for disconnect")
	}

	// And: Done is closed by Close
	require.NoError(t, join.Close())
	_, open := <-join.Done()
	assert.False(t, open)
}
