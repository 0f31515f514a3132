package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-link/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-link/internal/session"
)

const (
	writeTimeout   = 10 * time.Second
	closeTimeout   = time.Second
	defaultPath    = "/ws"
	maxMessageSize = 64 << 10
)

type Options struct {
	Self       string
	ListenAddr string
	Path       string
	Paired     []session.Peer
}

// Channel is a session.Channel over a single direct WebSocket connection.
// The listening side runs an HTTP server that accepts exactly one peer.
type Channel struct {
	logger     *slog.Logger
	self       string
	listenAddr string
	path       string
	paired     []session.Peer
	upgrader   websocket.Upgrader
	dialer     *websocket.Dialer

	accepted chan session.Peer
	serveErr chan error

	mu           sync.Mutex
	listener     net.Listener
	server       *http.Server
	conn         *websocket.Conn
	connected    bool
	closed       bool
	onMessage    func([]byte)
	onDisconnect func(error)

	writeMu sync.Mutex
}

func New(logger *slog.Logger, opts Options) *Channel {
	path := opts.Path
	if path == "" {
		path = defaultPath
	}

	return &Channel{
		logger:     logger.With("component", "websocket_channel"),
		self:       opts.Self,
		listenAddr: opts.ListenAddr,
		path:       path,
		paired:     opts.Paired,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		dialer:   websocket.DefaultDialer,
		accepted: make(chan session.Peer, 1),
		serveErr: make(chan error, 1),
	}
}

// Listen - binds the listen address and starts serving the upgrade endpoint.
func (that *Channel) Listen(ctx context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return apperror.ErrChannelClosed
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", that.listenAddr)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%w: %w", apperror.ErrPermissionDenied, err)
		}
		return fmt.Errorf("failed to listen on %s: %w", that.listenAddr, err)
	}

	that.listener = listener
	that.server = that.newServer()

	go func(server *http.Server) {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			that.logger.Error("WebSocket server error", "error", serveErr)
			that.serveErr <- serveErr
		}
	}(that.server)

	that.logger.Info("listening for a peer", "addr", listener.Addr().String())

	return nil
}

// Addr - returns the bound listen address, or "" before Listen.
func (that *Channel) Addr() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.listener == nil {
		return ""
	}
	return that.listener.Addr().String()
}

func (that *Channel) AwaitConnection(ctx context.Context) (session.Peer, error) {
	select {
	case peer := <-that.accepted:
		return peer, nil
	case err := <-that.serveErr:
		return session.Peer{}, fmt.Errorf("listener failed: %w", err)
	case <-ctx.Done():
		return session.Peer{}, ctx.Err()
	}
}

// Dial - connects to the peer's upgrade endpoint at address (host:port).
func (that *Channel) Dial(ctx context.Context, address string) error {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return apperror.ErrChannelClosed
	}
	that.mu.Unlock()

	target := url.URL{
		Scheme:   "ws",
		Host:     address,
		Path:     that.path,
		RawQuery: url.Values{peerNameParam: {that.self}}.Encode(),
	}

	conn, resp, err := that.dialer.DialContext(ctx, target.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return fmt.Errorf("%w: %s is busy", apperror.ErrPeerUnavailable, address)
		}
		return fmt.Errorf("failed to dial %s: %w", target.String(), err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		_ = conn.Close()
		return apperror.ErrChannelClosed
	}

	that.conn = conn
	that.connected = true
	go that.readMessages(conn)

	return nil
}

// Send - writes one text message. Failures are logged and dropped.
func (that *Channel) Send(payload []byte) {
	log := that.logger.With("method", "Send")

	that.mu.Lock()
	conn, connected := that.conn, that.connected
	that.mu.Unlock()

	if !connected {
		log.Warn("dropping message", "error", apperror.ErrNotConnected)
		return
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		log.Error("failed to set write deadline", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Error("failed to send message", "error", err)
	}
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

// readMessages - delivers inbound messages until the connection fails.
func (that *Channel) readMessages(conn *websocket.Conn) {
	log := that.logger.With("method", "readMessages")
	conn.SetReadLimit(maxMessageSize)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			that.handleReadError(log, err)
			return
		}

		that.mu.Lock()
		deliver := that.onMessage
		that.mu.Unlock()

		if deliver != nil {
			deliver(payload)
		}
	}
}

func (that *Channel) handleReadError(log *slog.Logger, err error) {
	that.mu.Lock()
	closed := that.closed
	that.connected = false
	notify := that.onDisconnect
	that.mu.Unlock()

	if closed {
		return
	}

	if isClosedConnError(err) {
		log.Info("peer closed the connection")
	} else {
		log.Error("error reading message", "error", err)
	}

	if notify != nil {
		notify(err)
	}
}

// Close - releases the connection and the listener. Safe to call repeatedly.
func (that *Channel) Close() error {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return nil
	}
	that.closed = true
	that.connected = false
	conn, server := that.conn, that.server
	that.mu.Unlock()

	var errs []error

	if conn != nil {
		that.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout))
		that.writeMu.Unlock()

		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}

	if server != nil {
		if err := server.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close listener: %w", err))
		}
	}

	that.logger.Info("Connection closed")

	return errors.Join(errs...)
}

// PairedPeers - returns the peers configured as trusted.
func (that *Channel) PairedPeers(context.Context) []session.Peer {
	peers := make([]session.Peer, len(that.paired))
	copy(peers, that.paired)
	return peers
}
