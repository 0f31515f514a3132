package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/tictactoe-link/internal/config"
	"github.com/rocketscienceinc/tictactoe-link/internal/session"
)

func TestResolvePeer(t *testing.T) {
	conf := &config.Config{
		PairedPeer: []config.PeerInfo{{Name: "kitchen", Address: "192.168.1.30:9090"}},
	}

	t.Run("Paired name resolves to its address", func(t *testing.T) {
		conf.Peer = "kitchen"

		assert.Equal(t, session.Peer{Name: "kitchen", Address: "192.168.1.30:9090"}, resolvePeer(conf))
	})

	t.Run("Unknown value is used as the address", func(t *testing.T) {
		conf.Peer = "10.0.0.7:9090"

		assert.Equal(t, session.Peer{Name: "10.0.0.7:9090", Address: "10.0.0.7:9090"}, resolvePeer(conf))
	})
}

func TestPairedPeers(t *testing.T) {
	conf := &config.Config{
		PairedPeer: []config.PeerInfo{
			{Name: "kitchen", Address: "192.168.1.30:9090"},
			{Name: "garden", Address: "192.168.1.31:9090"},
		},
	}

	peers := pairedPeers(conf)

	assert.Equal(t, []session.Peer{
		{Name: "kitchen", Address: "192.168.1.30:9090"},
		{Name: "garden", Address: "192.168.1.31:9090"},
	}, peers)
}
