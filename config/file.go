package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads daemon configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a daemon config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	// dApp listener
	case "listen.addr":
		cfg.Listen.Addr = value
	case "listen.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Listen.Port = port

	// Avalanche node
	case "node.avax_api":
		cfg.Node.AvaxAPI = value
	case "node.timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Node.TimeoutSeconds = n

	// Wallet
	case "wallet.name", "wallet":
		cfg.Wallet.Name = value

	// Bridge
	case "bridge.custody":
		cfg.Bridge.CustodyAddress = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default daemon configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	content := `# Frostgate Daemon Configuration

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.frostgate)
# datadir = ~/.frostgate

# ============================================================================
# dApp Listener
# ============================================================================

listen.addr = 127.0.0.1
listen.port = ` + defaultListenPort(network) + `

# ============================================================================
# Avalanche Node
# ============================================================================

node.avax_api = ` + defaultAvaxAPI(network) + `
node.timeout = 10

# ============================================================================
# Wallet
# ============================================================================

# Wallet name within the keystore to unlock at startup
wallet.name = main

# ============================================================================
# Bridge
# ============================================================================

# Custody address for avalanche_bridgeAsset (empty disables the method)
# bridge.custody =

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}

func defaultListenPort(network NetworkType) string {
	if network == Testnet {
		return "8179"
	}
	return "8178"
}

func defaultAvaxAPI(network NetworkType) string {
	if network == Testnet {
		return "https://api.avax-test.network"
	}
	return "https://api.avax.network"
}
