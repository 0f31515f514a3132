package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-link/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-link/internal/session"
)

const (
	inboxPrefix    = "tictactoe:inbox:"
	publishTimeout = 5 * time.Second

	kindHello = "hello"
	kindData  = "data"
	kindBye   = "bye"
)

var ErrPeerLeft = errors.New("peer left the session")

type peerRepo interface {
	Register(ctx context.Context, name string) error
	Unregister(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// envelope wraps every payload published to a peer's inbox.
type envelope struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Kind string `json:"kind"`
	Data string `json:"data,omitempty"`
}

// Channel is a session.Channel relayed through Redis pub/sub. Each player
// subscribes to its own inbox; peers are addressed by player name.
type Channel struct {
	logger   *slog.Logger
	client   *redis.Client
	peerRepo peerRepo
	self     string

	accepted chan session.Peer

	mu           sync.Mutex
	pubsub       *redis.PubSub
	peer         string
	connected    bool
	registered   bool
	closed       bool
	onMessage    func([]byte)
	onDisconnect func(error)
}

func New(logger *slog.Logger, client *redis.Client, peerRepo peerRepo, self string) *Channel {
	return &Channel{
		logger:   logger.With("component", "redis_channel", "self", self),
		client:   client,
		peerRepo: peerRepo,
		self:     self,
		accepted: make(chan session.Peer, 1),
	}
}

func inbox(name string) string {
	return inboxPrefix + name
}

// Listen - subscribes to the own inbox and advertises the player as reachable.
func (that *Channel) Listen(ctx context.Context) error {
	if err := that.subscribe(ctx); err != nil {
		return err
	}

	if err := that.peerRepo.Register(ctx, that.self); err != nil {
		return fmt.Errorf("failed to advertise player: %w", err)
	}

	that.mu.Lock()
	that.registered = true
	that.mu.Unlock()

	that.logger.Info("listening for a peer")

	return nil
}

func (that *Channel) subscribe(ctx context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return apperror.ErrChannelClosed
	}

	if that.pubsub != nil {
		return nil
	}

	pubsub := that.client.Subscribe(ctx, inbox(that.self))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to inbox: %w", err)
	}

	that.pubsub = pubsub
	go that.consume(pubsub.Channel())

	return nil
}

func (that *Channel) AwaitConnection(ctx context.Context) (session.Peer, error) {
	select {
	case peer := <-that.accepted:
		return peer, nil
	case <-ctx.Done():
		return session.Peer{}, ctx.Err()
	}
}

// Dial - greets the peer's inbox. The peer must be listening.
func (that *Channel) Dial(ctx context.Context, address string) error {
	if err := that.subscribe(ctx); err != nil {
		return err
	}

	receivers, err := that.publish(ctx, address, kindHello, nil)
	if err != nil {
		return fmt.Errorf("failed to greet %s: %w", address, err)
	}

	if receivers == 0 {
		return fmt.Errorf("%w: %s is not listening", apperror.ErrPeerUnavailable, address)
	}

	that.mu.Lock()
	that.peer = address
	that.connected = true
	that.mu.Unlock()

	that.logger.Info("connected to peer", "peer", address)

	return nil
}

// Send - publishes one message to the peer. Failures are logged and dropped.
func (that *Channel) Send(payload []byte) {
	log := that.logger.With("method", "Send")

	that.mu.Lock()
	peer, connected := that.peer, that.connected
	that.mu.Unlock()

	if !connected {
		log.Warn("dropping message", "error", apperror.ErrNotConnected)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if _, err := that.publish(ctx, peer, kindData, payload); err != nil {
		log.Error("failed to send message", "error", err)
	}
}

func (that *Channel) publish(ctx context.Context, to, kind string, payload []byte) (int64, error) {
	data, err := json.Marshal(envelope{
		ID:   uuid.NewString(),
		From: that.self,
		Kind: kind,
		Data: string(payload),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	receivers, err := that.client.Publish(ctx, inbox(to), data).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish: %w", err)
	}

	return receivers, nil
}

func (that *Channel) OnMessage(fn func([]byte)) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.onMessage = fn
}

func (that *Channel) OnDisconnect(fn func(error)) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.onDisconnect = fn
}

// consume - dispatches inbox messages until the subscription is closed.
func (that *Channel) consume(messages <-chan *redis.Message) {
	log := that.logger.With("method", "consume")

	for msg := range messages {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Debug("ignoring malformed envelope", "error", err)
			continue
		}

		switch env.Kind {
		case kindHello:
			that.accept(log, env.From)
		case kindData:
			that.deliver(env)
		case kindBye:
			that.peerLeft(log, env.From)
		default:
			log.Debug("ignoring envelope", "kind", env.Kind)
		}
	}
}

func (that *Channel) accept(log *slog.Logger, from string) {
	that.mu.Lock()
	if that.connected || that.closed {
		that.mu.Unlock()
		log.Warn("rejecting additional peer", "peer", from)
		return
	}
	that.peer = from
	that.connected = true
	that.mu.Unlock()

	log.Info("peer connected", "peer", from)

	select {
	case that.accepted <- session.Peer{Name: from, Address: from}:
	default:
	}
}

func (that *Channel) deliver(env envelope) {
	that.mu.Lock()
	fromPeer := that.connected && env.From == that.peer
	deliver := that.onMessage
	that.mu.Unlock()

	if fromPeer && deliver != nil {
		deliver([]byte(env.Data))
	}
}

func (that *Channel) peerLeft(log *slog.Logger, from string) {
	that.mu.Lock()
	if !that.connected || from != that.peer {
		that.mu.Unlock()
		return
	}
	that.connected = false
	notify := that.onDisconnect
	that.mu.Unlock()

	log.Info("peer left", "peer", from)

	if notify != nil {
		notify(ErrPeerLeft)
	}
}

// Close - says goodbye to the peer, drops the subscription and the advertisement.
// Safe to call repeatedly.
func (that *Channel) Close() error {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return nil
	}
	that.closed = true
	peer, connected, registered, pubsub := that.peer, that.connected, that.registered, that.pubsub
	that.connected = false
	that.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	var errs []error

	if connected {
		if _, err := that.publish(ctx, peer, kindBye, nil); err != nil {
			errs = append(errs, err)
		}
	}

	if pubsub != nil {
		if err := pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close subscription: %w", err))
		}
	}

	if registered {
		if err := that.peerRepo.Unregister(ctx, that.self); err != nil {
			errs = append(errs, err)
		}
	}

	that.logger.Info("Connection closed")

	return errors.Join(errs...)
}

// PairedPeers - returns the other players currently advertised on the relay.
func (that *Channel) PairedPeers(ctx context.Context) []session.Peer {
	names, err := that.peerRepo.List(ctx)
	if err != nil {
		that.logger.Error("failed to list peers", "error", err)
		return nil
	}

	peers := make([]session.Peer, 0, len(names))
	for _, name := range names {
		if name == that.self {
			continue
		}
		peers = append(peers, session.Peer{Name: name, Address: name})
	}

	return peers
}
