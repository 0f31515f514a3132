package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-link/internal/session"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 30 * time.Second

	peerNameParam = "name"
)

// newRouter - builds the listener routes: the ping probe and the websocket upgrade endpoint.
func (that *Channel) newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)
	r.Get(that.path, that.upgradeToWebSocket)

	return r
}

func (that *Channel) newServer() *http.Server {
	return &http.Server{
		Handler:           that.newRouter(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// upgradeToWebSocket - accepts the single peer connection.
func (that *Channel) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || that.conn != nil {
		http.Error(writer, "peer already connected", http.StatusConflict)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	that.conn = conn
	that.connected = true
	go that.readMessages(conn)

	peerName := req.URL.Query().Get(peerNameParam)
	log.Info("WebSocket connection established", "peer", peerName, "remote", req.RemoteAddr)

	select {
	case that.accepted <- session.Peer{Name: peerName, Address: req.RemoteAddr}:
	default:
	}
}

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func isClosedConnError(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, http.ErrServerClosed)
}
