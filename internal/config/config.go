package config

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeLocal = "local"
	ModeHost  = "host"
	ModeJoin  = "join"

	TransportWebsocket = "websocket"
	TransportRedis     = "redis"
)

var (
	ErrUnknownMode      = errors.New("unknown mode")
	ErrUnknownTransport = errors.New("unknown transport")
	ErrPeerRequired     = errors.New("peer address is required in join mode")
)

type Config struct {
	LogLevel   string     `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	PlayerName string     `yaml:"player-name" env:"PLAYER_NAME"`
	Mode       string     `yaml:"mode" env:"MODE" env-default:"local"`
	Difficulty string     `yaml:"difficulty" env:"DIFFICULTY" env-default:"hard"`
	Transport  string     `yaml:"transport" env:"TRANSPORT" env-default:"websocket"`
	Peer       string     `yaml:"peer" env:"PEER"`
	Websocket  Websocket  `yaml:"websocket"`
	Redis      Redis      `yaml:"redis"`
	PairedPeer []PeerInfo `yaml:"paired-peers"`
}

type Websocket struct {
	ListenAddr string `yaml:"listen-addr" env:"WS_LISTEN_ADDR" env-default:":9090"`
	Path       string `yaml:"path" env:"WS_PATH" env-default:"/ws"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type PeerInfo struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Load - reads the config file, applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if config.PlayerName == "" {
		config.PlayerName = "player-" + uuid.NewString()[:8]
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Mode {
	case ModeLocal, ModeHost:
	case ModeJoin:
		if that.Peer == "" {
			return ErrPeerRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, that.Mode)
	}

	switch that.Transport {
	case TransportWebsocket, TransportRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, that.Transport)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
