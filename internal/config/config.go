package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"8080"`
	DatabaseFile string `env:"DATABASE_FILE" envDefault:"cryptic.db"`
	GinMode      string `env:"GIN_MODE" envDefault:"release"`
	TLSCertFile  string `env:"TLS_CERT_FILE"`
	TLSKeyFile   string `env:"TLS_KEY_FILE"`

	// MinerTick is how often running miners credit their wallets.
	MinerTick time.Duration `env:"MINER_TICK" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT")
	}
	if cfg.DatabaseFile == "" {
		return Config{}, fmt.Errorf("DATABASE_FILE is required")
	}
	if cfg.MinerTick <= 0 {
		return Config{}, fmt.Errorf("invalid MINER_TICK")
	}
	return cfg, nil
}
