// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/Iagonorg/login-with-cardano-demo/internal/cardano"
)

// Config holds the service configuration.
type Config struct {
	ListenAddr     string
	RedisURL       string
	CardanoNetwork byte
}

// FromEnv reads the configuration from environment variables, falling back
// to development defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:     envOr("LISTEN_ADDR", ":9000"),
		RedisURL:       envOr("REDIS_URL", "redis://localhost:6379/0"),
		CardanoNetwork: cardano.TestnetID,
	}

	switch network := envOr("CARDANO_NETWORK", "testnet"); network {
	case "testnet":
		cfg.CardanoNetwork = cardano.TestnetID
	case "mainnet":
		cfg.CardanoNetwork = cardano.MainnetID
	default:
		return nil, fmt.Errorf("unknown CARDANO_NETWORK %q", network)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
