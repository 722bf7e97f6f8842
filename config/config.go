// Package config handles daemon configuration: defaults, the config
// file, command-line flags, and validation.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds daemon runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// dApp transport
	Listen ListenConfig

	// Avalanche node endpoints
	Node NodeConfig

	// Wallet
	Wallet WalletConfig

	// Bridge
	Bridge BridgeConfig

	// Logging
	Log LogConfig
}

// ListenConfig holds the dApp WebSocket endpoint settings.
type ListenConfig struct {
	Addr string `conf:"listen.addr"`
	Port int    `conf:"listen.port"`
}

// NodeConfig holds upstream node endpoint settings.
type NodeConfig struct {
	// AvaxAPI is the base URL of the Avalanche node serving the X and P
	// chain APIs. The C-Chain RPC URL comes from the network registry.
	AvaxAPI string `conf:"node.avax_api"`
	// TimeoutSeconds bounds each upstream RPC call.
	TimeoutSeconds int `conf:"node.timeout"`
}

// WalletConfig holds wallet settings.
type WalletConfig struct {
	// Name selects which wallet file in the keystore to unlock at startup.
	Name string `conf:"wallet.name"`
}

// BridgeConfig holds asset bridge settings.
type BridgeConfig struct {
	// CustodyAddress is the EVM address bridge transfers are sent to.
	// Empty disables avalanche_bridgeAsset.
	CustodyAddress string `conf:"bridge.custody"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.frostgate
//	macOS:   ~/Library/Application Support/Frostgate
//	Windows: %APPDATA%\Frostgate
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".frostgate"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Frostgate")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Frostgate")
		}
		return filepath.Join(home, "AppData", "Roaming", "Frostgate")
	default:
		return filepath.Join(home, ".frostgate")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// DBDir returns the session and address book database directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.NetworkDataDir(), "db")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "frostgate.conf")
}

// IsTestnet reports whether the daemon targets test networks.
func (c *Config) IsTestnet() bool {
	return c.Network == Testnet
}
