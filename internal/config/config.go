package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeLocal   = "local"
	ModeNetwork = "network"

	RoleHost   = "host"
	RoleClient = "client"

	KindHuman = "human"
	KindBot   = "bot"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`

	// Mode selects a single-process game or a two-process one; Role only
	// matters in network mode.
	Mode string `yaml:"mode" env:"MODE" env-default:"local"`
	Role string `yaml:"role" env:"ROLE" env-default:"host"`

	ListenAddr  string `yaml:"listen-addr" env:"LISTEN_ADDR" env-default:":9000"`
	ConnectAddr string `yaml:"connect-addr" env:"CONNECT_ADDR" env-default:"127.0.0.1:9000"`

	// SpectatePort enables the read-only WebSocket fan-out when non-empty.
	SpectatePort string `yaml:"spectate-port" env:"SPECTATE_PORT" env-default:""`

	PlayerX string `yaml:"player-x" env:"PLAYER_X" env-default:"human"`
	PlayerO string `yaml:"player-o" env:"PLAYER_O" env-default:"bot"`
}

// MustLoad reads the config file, with environment overrides; when the file
// does not exist the environment alone is used.
func MustLoad(path string) *Config {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		panic(fmt.Errorf("unable to load config: %w", err))
	}

	if err = config.Validate(); err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	if that.Mode != ModeLocal && that.Mode != ModeNetwork {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, that.Mode)
	}

	if that.Mode == ModeNetwork && that.Role != RoleHost && that.Role != RoleClient {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidConfig, that.Role)
	}

	for _, kind := range []string{that.PlayerX, that.PlayerO} {
		if kind != KindHuman && kind != KindBot {
			return fmt.Errorf("%w: unknown player kind %q", ErrInvalidConfig, kind)
		}
	}

	return nil
}

// PlayerKind returns the configured kind for a mark ("X" or "O").
func (that *Config) PlayerKind(mark string) string {
	if mark == "O" {
		return that.PlayerO
	}
	return that.PlayerX
}
