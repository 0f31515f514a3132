package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Applies defaults", func(t *testing.T) {
		// Given: a config file naming only the player
		path := writeConfig(t, "player-name: alice\n")

		// When: loading it
		conf, err := Load(path)

		// Then: defaults are filled in
		require.NoError(t, err)
		assert.Equal(t, "alice", conf.PlayerName)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, ModeLocal, conf.Mode)
		assert.Equal(t, "hard", conf.Difficulty)
		assert.Equal(t, TransportWebsocket, conf.Transport)
		assert.Equal(t, ":9090", conf.Websocket.ListenAddr)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Generates a player name", func(t *testing.T) {
		path := writeConfig(t, "mode: host\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Regexp(t, `^player-[0-9a-f]{8}$`, conf.PlayerName)
	})

	t.Run("Reads paired peers", func(t *testing.T) {
		path := writeConfig(t, `
mode: join
peer: 10.0.0.2:9090
paired-peers:
  - name: bob
    address: 10.0.0.2:9090
`)

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, []PeerInfo{{Name: "bob", Address: "10.0.0.2:9090"}}, conf.PairedPeer)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		t.Setenv("DIFFICULTY", "easy")
		path := writeConfig(t, "difficulty: medium\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "easy", conf.Difficulty)
	})

	t.Run("Join mode requires a peer", func(t *testing.T) {
		path := writeConfig(t, "mode: join\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrPeerRequired)
	})

	t.Run("Unknown transport is rejected", func(t *testing.T) {
		path := writeConfig(t, "transport: carrier-pigeon\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrUnknownTransport)
	})

	t.Run("Missing file panics in MustLoad", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
