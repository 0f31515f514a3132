package console

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/session"
	"github.com/rocketscienceinc/tictactoe-link/internal/usecase"
)

type peerSession interface {
	Peer() session.Peer
	PairedPeers(ctx context.Context) []session.Peer
	LocalFirst() bool
	Decide(choice session.Choice) error
	Broadcast(game entity.Game, reset bool) error
	Handle(payload []byte) session.Event
	HandleDisconnect(err error) session.Event
	Inbound() <-chan []byte
	Disconnects() <-chan error
}

// RunDuel - plays against a connected peer. Either side may decide who moves first;
// the first decision seen locally wins.
func (that *Console) RunDuel(ctx context.Context, sess peerSession) error {
	log := that.logger.With("method", "RunDuel", "peer", sess.Peer().Name)

	that.printf("Connected to %s. Who moves first? Type \"me\" or \"opponent\".\n", sess.Peer().Name)

	var duel *usecase.Duel
	startDuel := func() {
		duel = usecase.NewDuel(that.logger, sess)
		that.printf("You play %s.\n", duel.Local())
		that.render(duel.Game())
	}

	lines := that.readLines(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sess.Disconnects():
			sess.HandleDisconnect(err)
			that.printf("%s left the game.\n", sess.Peer().Name)
			return fmt.Errorf("%w: %w", ErrPeerDisconnected, err)
		case payload := <-sess.Inbound():
			event := sess.Handle(payload)

			switch event.Kind {
			case session.EventDecided:
				startDuel()
			case session.EventGameState:
				if duel == nil {
					continue
				}
				game, err := duel.Apply(event.Game, event.Reset)
				if err != nil && !usecase.IsFinished(err) {
					log.Error("failed to apply peer state", "error", err)
					continue
				}
				that.render(game)
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			cmd, err := ParseCommand(line)
			if err != nil {
				that.printf("%v\n", err)
				continue
			}

			if cmd.Kind == CommandQuit {
				return nil
			}

			if cmd.Kind == CommandPeers {
				for _, peer := range sess.PairedPeers(ctx) {
					that.printf("  %s (%s)\n", peer.Name, peer.Address)
				}
				continue
			}

			if duel == nil {
				if cmd.Kind != CommandChoose {
					that.printf("Decide who moves first: \"me\" or \"opponent\".\n")
					continue
				}
				if err = sess.Decide(cmd.Choice); err != nil {
					log.Warn("decision refused", "error", err)
					that.printf("%v\n", err)
					continue
				}
				startDuel()
				continue
			}

			that.playLocal(duel, cmd)
		}
	}
}

func (that *Console) playLocal(duel *usecase.Duel, cmd Command) {
	switch cmd.Kind {
	case CommandNew:
		if err := duel.Reset(); err != nil {
			that.printf("%v\n", err)
			return
		}
		that.render(duel.Game())
	case CommandMove:
		game, err := duel.MakeTurn(cmd.Cell)
		if err != nil && !usecase.IsFinished(err) {
			that.printf("%v\n", err)
			return
		}
		that.render(game)
	default:
		that.printf("The first mover is already decided.\n")
	}
}
