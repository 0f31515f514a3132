package console

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
	"github.com/rocketscienceinc/tictactoe-link/internal/usecase"
)

type botMatch interface {
	Game() entity.Game
	Human() entity.Mark
	NewGame() (entity.Game, error)
	MakeTurn(cell entity.Cell) (entity.Game, error)
}

// RunLocal - plays against the bot until the input ends, the player quits or ctx is cancelled.
func (that *Console) RunLocal(ctx context.Context, match botMatch) error {
	log := that.logger.With("method", "RunLocal")

	game, err := match.NewGame()
	if err != nil {
		return err
	}

	that.printf("You play %s. Enter moves as \"row col\".\n", match.Human())
	that.render(game)

	lines := that.readLines(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			cmd, err := ParseCommand(line)
			if err != nil {
				that.printf("%v\n", err)
				continue
			}

			switch cmd.Kind {
			case CommandQuit:
				return nil
			case CommandNew:
				if game, err = match.NewGame(); err != nil {
					return err
				}
				that.render(game)
			case CommandMove:
				game, err = match.MakeTurn(cmd.Cell)
				if err != nil && !usecase.IsFinished(err) {
					log.Debug("move refused", "error", err)
					that.printf("%v\n", err)
					continue
				}
				that.render(game)
			default:
				that.printf("Not available against the bot.\n")
			}
		}
	}
}
