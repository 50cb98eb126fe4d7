package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob, all overridable from the environment.
// An empty AUTH_TOKEN disables the shared-secret check on both the ingest
// endpoint and the websocket protocol.
type Config struct {
	Addr   string `env:"ADDR" envDefault:":8080"`
	AppEnv string `env:"APP_ENV" envDefault:"prod"`

	AuthToken string `env:"AUTH_TOKEN"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"5m"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"60s"`
	RoomTTL              time.Duration `env:"ROOM_TTL" envDefault:"10m"`
	RoomSweepInterval    time.Duration `env:"ROOM_SWEEP_INTERVAL" envDefault:"5m"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`
	ClientTimeout        time.Duration `env:"CLIENT_TIMEOUT" envDefault:"60s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) DevMode() bool {
	return c.AppEnv == "dev"
}
