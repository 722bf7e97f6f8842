package config

import (
	"fmt"
	"strings"
)

// Validate checks a Config for operational errors.
func Validate(cfg *Config) error {
	switch cfg.Network {
	case Mainnet, Testnet:
	default:
		return fmt.Errorf("unknown network %q (want mainnet or testnet)", cfg.Network)
	}

	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}

	if cfg.Listen.Port < 1 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen.port %d out of range", cfg.Listen.Port)
	}

	if cfg.Node.AvaxAPI == "" {
		return fmt.Errorf("node.avax_api must not be empty")
	}
	if !strings.HasPrefix(cfg.Node.AvaxAPI, "http://") && !strings.HasPrefix(cfg.Node.AvaxAPI, "https://") {
		return fmt.Errorf("node.avax_api %q must be an http(s) URL", cfg.Node.AvaxAPI)
	}
	if cfg.Node.TimeoutSeconds <= 0 {
		return fmt.Errorf("node.timeout must be positive")
	}

	if cfg.Wallet.Name == "" {
		return fmt.Errorf("wallet.name must not be empty")
	}

	if c := cfg.Bridge.CustodyAddress; c != "" {
		if !strings.HasPrefix(c, "0x") || len(c) != 42 {
			return fmt.Errorf("bridge.custody %q is not a valid EVM address", c)
		}
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}

	return nil
}
