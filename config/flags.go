package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// dApp listener
	ListenAddr string
	ListenPort int

	// Avalanche node
	AvaxAPI     string
	NodeTimeout int

	// Wallet
	WalletName string

	// Bridge
	BridgeCustody string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// ParseFlags parses command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("frostgate", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.StringVar(&f.Network, "testnet", "", "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// dApp listener
	fs.StringVar(&f.ListenAddr, "listen-addr", "", "dApp WebSocket listen address")
	fs.IntVar(&f.ListenPort, "listen-port", 0, "dApp WebSocket listen port")

	// Avalanche node
	fs.StringVar(&f.AvaxAPI, "avax-api", "", "Avalanche node API base URL")
	fs.IntVar(&f.NodeTimeout, "node-timeout", 0, "Upstream RPC timeout in seconds")

	// Wallet
	fs.StringVar(&f.WalletName, "wallet", "", "Wallet name to unlock at startup")

	// Bridge
	fs.StringVar(&f.BridgeCustody, "bridge-custody", "", "Custody address for bridge transfers")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	// Custom usage
	fs.Usage = func() {
		printUsage()
	}

	// Parse
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Handle --testnet shorthand
	if isFlagSet(fs, "testnet") {
		f.Network = "testnet"
	}
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()

	return f
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// dApp listener
	if f.ListenAddr != "" {
		cfg.Listen.Addr = f.ListenAddr
	}
	if f.ListenPort != 0 {
		cfg.Listen.Port = f.ListenPort
	}

	// Avalanche node
	if f.AvaxAPI != "" {
		cfg.Node.AvaxAPI = f.AvaxAPI
	}
	if f.NodeTimeout != 0 {
		cfg.Node.TimeoutSeconds = f.NodeTimeout
	}

	// Wallet
	if f.WalletName != "" {
		cfg.Wallet.Name = f.WalletName
	}

	// Bridge
	if f.BridgeCustody != "" {
		cfg.Bridge.CustodyAddress = f.BridgeCustody
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	usage := `Frostgate - non-custodial wallet boundary daemon for Avalanche

Usage:
  frostgated [options]
  frostgated --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --network        Network type: mainnet (default) or testnet
  --testnet        Shorthand for --network=testnet
  --datadir        Data directory (default: ~/.frostgate)
  --config, -c     Config file path (default: <datadir>/frostgate.conf)

Listener Options:
  --listen-addr    dApp WebSocket listen address (default: 127.0.0.1)
  --listen-port    dApp WebSocket port (mainnet: 8178, testnet: 8179)

Node Options:
  --avax-api       Avalanche node API base URL
  --node-timeout   Upstream RPC timeout in seconds (default: 10)

Wallet Options:
  --wallet         Wallet name to unlock at startup (default: main)

Bridge Options:
  --bridge-custody Custody address for avalanche_bridgeAsset transfers

Logging Options:
  --log-level      Log level: debug, info, warn, error (default: info)
  --log-file       Log file path (default: stdout)
  --log-json       Output logs as JSON

Examples:
  # Start on mainnet
  frostgated

  # Start on testnet
  frostgated --testnet

  # Start with a custom data directory
  frostgated --datadir=/path/to/data
`
	fmt.Print(usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load() (*Config, *Flags, error) {
	flags := ParseFlags()

	// Handle help/version
	if flags.Help {
		printUsage()
		os.Exit(0)
	}
	if flags.Version {
		fmt.Println("frostgated version 0.1.0")
		os.Exit(0)
	}

	// Determine network first (needed for defaults)
	network := Mainnet
	if strings.ToLower(flags.Network) == "testnet" {
		network = Testnet
	}

	// Start with defaults
	cfg := Default(network)

	// Override datadir if specified
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	// Auto-create data directories and default config on first start.
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	// Determine config file path
	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	// Load config file
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}

	// Apply file config
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	// Apply flags (highest precedence)
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Idempotent, safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.KeystoreDir(),
		cfg.DBDir(),
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// Create default config if it doesn't exist.
	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
