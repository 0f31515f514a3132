package usecase

import (
	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-link/internal/entity"
)

type mockBot struct {
	mock.Mock
}

func (that *mockBot) MakeTurn(game entity.Game) (entity.Game, error) {
	args := that.Called(game)
	return args.Get(0).(entity.Game), args.Error(1)
}

type mockLink struct {
	mock.Mock
}

func (that *mockLink) LocalFirst() bool {
	return that.Called().Bool(0)
}

func (that *mockLink) Broadcast(game entity.Game, reset bool) error {
	return that.Called(game, reset).Error(0)
}
