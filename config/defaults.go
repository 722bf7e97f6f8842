package config

// DefaultMainnet returns the default daemon configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Listen: ListenConfig{
			Addr: "127.0.0.1",
			Port: 8178,
		},
		Node: NodeConfig{
			AvaxAPI:        "https://api.avax.network",
			TimeoutSeconds: 10,
		},
		Wallet: WalletConfig{
			Name: "main",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default daemon configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Listen.Port = 8179
	cfg.Node.AvaxAPI = "https://api.avax-test.network"
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
