package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-link/internal/config"
	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/repository"
	"github.com/rocketscienceinc/tictactoe-link/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-link/internal/service"
	"github.com/rocketscienceinc/tictactoe-link/internal/session"
	"github.com/rocketscienceinc/tictactoe-link/internal/transport/console"
	"github.com/rocketscienceinc/tictactoe-link/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-link/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-link/internal/usecase"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	cons := console.New(logger, os.Stdin, os.Stdout)

	if conf.Mode == config.ModeLocal {
		return runLocal(ctx, logger, conf, cons)
	}

	channel, release, err := newChannel(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer release()

	sess := session.New(logger, channel, conf.PlayerName)
	defer func() {
		if err = sess.Close(); err != nil {
			log.Error("could not close session", "error", err)
		}
	}()

	switch conf.Mode {
	case config.ModeHost:
		log.Info("Waiting for a peer", "transport", conf.Transport, "player", conf.PlayerName)
		err = sess.Host(ctx)
	case config.ModeJoin:
		peer := resolvePeer(conf)
		log.Info("Joining peer", "transport", conf.Transport, "peer", peer.Name, "address", peer.Address)
		err = sess.Join(ctx, peer)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("could not connect to peer: %w", err)
	}

	if err = cons.RunDuel(ctx, sess); err != nil {
		if errors.Is(err, console.ErrPeerDisconnected) {
			log.Warn("Game ended by peer", "error", err)
			return nil
		}
		return fmt.Errorf("duel failed: %w", err)
	}

	return nil
}

func runLocal(ctx context.Context, logger *slog.Logger, conf *config.Config, cons *console.Console) error {
	strategy, err := service.NewStrategy(conf.Difficulty, nil)
	if err != nil {
		return fmt.Errorf("could not create bot strategy: %w", err)
	}

	match := usecase.NewMatch(logger, service.NewBotService(strategy), entity.MarkX)

	if err = cons.RunLocal(ctx, match); err != nil {
		return fmt.Errorf("local game failed: %w", err)
	}

	return nil
}

// newChannel - builds the configured transport. The returned func releases what it holds.
func newChannel(ctx context.Context, logger *slog.Logger, conf *config.Config) (session.Channel, func(), error) {
	if conf.Transport == config.TransportWebsocket {
		channel := websocket.New(logger, websocket.Options{
			Self:       conf.PlayerName,
			ListenAddr: conf.Websocket.ListenAddr,
			Path:       conf.Websocket.Path,
			Paired:     pairedPeers(conf),
		})

		return channel, func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	release := func() {
		if err := redisStorage.Close(); err != nil {
			logger.Error("could not close redis storage", "error", err)
		}
	}

	peerRepo := repository.NewPeerRepository(redisStorage)

	return redis.New(logger, redisStorage, peerRepo, conf.PlayerName), release, nil
}

func pairedPeers(conf *config.Config) []session.Peer {
	peers := make([]session.Peer, 0, len(conf.PairedPeer))
	for _, peer := range conf.PairedPeer {
		peers = append(peers, session.Peer{Name: peer.Name, Address: peer.Address})
	}

	return peers
}

// resolvePeer - maps a paired peer name to its address; anything else is used as an address.
func resolvePeer(conf *config.Config) session.Peer {
	for _, peer := range conf.PairedPeer {
		if peer.Name == conf.Peer {
			return session.Peer{Name: peer.Name, Address: peer.Address}
		}
	}

	return session.Peer{Name: conf.Peer, Address: conf.Peer}
}
