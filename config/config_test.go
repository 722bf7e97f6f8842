package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	main := DefaultMainnet()
	if main.Network != Mainnet {
		t.Errorf("network %q, want mainnet", main.Network)
	}
	if main.Listen.Port != 8178 {
		t.Errorf("listen port %d, want 8178", main.Listen.Port)
	}

	test := DefaultTestnet()
	if test.Network != Testnet {
		t.Errorf("network %q, want testnet", test.Network)
	}
	if test.Listen.Port != 8179 {
		t.Errorf("listen port %d, want 8179", test.Listen.Port)
	}
	if test.Node.AvaxAPI == main.Node.AvaxAPI {
		t.Error("testnet should point at a different node API")
	}

	if err := Validate(main); err != nil {
		t.Errorf("default mainnet config invalid: %v", err)
	}
	if err := Validate(test); err != nil {
		t.Errorf("default testnet config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frostgate.conf")
	content := `# comment
network = testnet
listen.port = 9000
node.avax_api = "http://localhost:9650"
wallet.name = 'ops'
log.json = true
unknown.key = whatever
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}

	if cfg.Network != Testnet {
		t.Errorf("network %q, want testnet", cfg.Network)
	}
	if cfg.Listen.Port != 9000 {
		t.Errorf("listen port %d, want 9000", cfg.Listen.Port)
	}
	if cfg.Node.AvaxAPI != "http://localhost:9650" {
		t.Errorf("avax api %q, quotes should be stripped", cfg.Node.AvaxAPI)
	}
	if cfg.Wallet.Name != "ops" {
		t.Errorf("wallet name %q, want ops", cfg.Wallet.Name)
	}
	if !cfg.Log.JSON {
		t.Error("log.json should be true")
	}
}

func TestLoadFileMissing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("got %d values, want 0", len(values))
	}
}

func TestLoadFileBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.conf")
	if err := os.WriteFile(path, []byte("not a key value line\n"), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed line should error")
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := DefaultMainnet()
	ApplyFlags(cfg, &Flags{
		Network:       "testnet",
		ListenPort:    9100,
		AvaxAPI:       "http://localhost:9650",
		WalletName:    "ops",
		BridgeCustody: "0x00000000000000000000000000000000000000aa",
		LogLevel:      "debug",
	})

	if cfg.Network != Testnet {
		t.Errorf("network %q, want testnet", cfg.Network)
	}
	if cfg.Listen.Port != 9100 {
		t.Errorf("listen port %d, want 9100", cfg.Listen.Port)
	}
	if cfg.Bridge.CustodyAddress == "" {
		t.Error("bridge custody should be set")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("config invalid after flags: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad network", func(c *Config) { c.Network = "devnet" }},
		{"empty datadir", func(c *Config) { c.DataDir = "" }},
		{"port out of range", func(c *Config) { c.Listen.Port = 70000 }},
		{"bad node url", func(c *Config) { c.Node.AvaxAPI = "localhost:9650" }},
		{"zero timeout", func(c *Config) { c.Node.TimeoutSeconds = 0 }},
		{"empty wallet", func(c *Config) { c.Wallet.Name = "" }},
		{"bad custody", func(c *Config) { c.Bridge.CustodyAddress = "not-an-address" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMainnet()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnsureDataDirs(t *testing.T) {
	cfg := DefaultMainnet()
	cfg.DataDir = filepath.Join(t.TempDir(), "frostgate")

	if err := EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs failed: %v", err)
	}
	for _, dir := range []string{cfg.KeystoreDir(), cfg.DBDir(), cfg.LogsDir()} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("dir %s not created: %v", dir, err)
		}
	}
	if _, err := os.Stat(cfg.ConfigFile()); err != nil {
		t.Errorf("default config not written: %v", err)
	}

	// Second call is a no-op.
	if err := EnsureDataDirs(cfg); err != nil {
		t.Fatalf("second EnsureDataDirs failed: %v", err)
	}
}
