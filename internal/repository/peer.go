package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

const peersKey = "tictactoe:peers"

// PeerRepository keeps the set of players currently reachable through the relay.
type PeerRepository interface {
	Register(ctx context.Context, name string) error
	Unregister(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

type dbPeer struct {
	client *redis.Client
}

func NewPeerRepository(client *redis.Client) PeerRepository {
	return &dbPeer{
		client: client,
	}
}

func (that *dbPeer) Register(ctx context.Context, name string) error {
	if err := that.client.SAdd(ctx, peersKey, name).Err(); err != nil {
		return fmt.Errorf("failed to register peer: %w", err)
	}

	return nil
}

func (that *dbPeer) Unregister(ctx context.Context, name string) error {
	if err := that.client.SRem(ctx, peersKey, name).Err(); err != nil {
		return fmt.Errorf("failed to unregister peer: %w", err)
	}

	return nil
}

// List - returns registered peer names in sorted order.
func (that *dbPeer) List(ctx context.Context) ([]string, error) {
	names, err := that.client.SMembers(ctx, peersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list peers: %w", err)
	}

	slices.Sort(names)

	return names, nil
}
