// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"FulfillFeeBps", cfg.FulfillFeeBps, uint64(100)},
		{"ProfitPlatformPct", cfg.ProfitPlatformPct, uint64(90)},
		{"DestroyPlatformPct", cfg.DestroyPlatformPct, uint64(20)},
		{"MinAcceptorRatioBps", cfg.MinAcceptorRatioBps, uint64(15000)},
		{"MaxAcceptorRatioBps", cfg.MaxAcceptorRatioBps, uint64(20000)},
		{"AllowDeleteAccepted", cfg.AllowDeleteAccepted, false},
		{"RewardAmount", cfg.RewardAmount, uint64(10000)},
		{"RewardDecrement", cfg.RewardDecrement, uint64(100)},
		{"PoolWithdrawPolicy", cfg.PoolWithdrawPolicy, PolicyPooled},
		{"TransferBreakerFailures", cfg.TransferBreakerFailures, uint64(5)},
		{"TransferBreakerTimeout", cfg.TransferBreakerTimeout, uint64(30)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if !cfg.IsMainnet() {
		t.Error("default config should be mainnet")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	original := Config{
		DataDir:             "/tmp/test-margin",
		Network:             "testnet",
		LogLevel:            "debug",
		LogFile:             "/tmp/margin.log",
		PlatformAccount:     "00112233445566778899aabbccddeeff00112233",
		AdminAccount:        "ffeeddccbbaa99887766554433221100ffeeddcc",
		FulfillFeeBps:       250,
		ProfitPlatformPct:   80,
		DestroyPlatformPct:  30,
		MinAcceptorRatioBps: 10000,
		MaxAcceptorRatioBps: 30000,
		AllowDeleteAccepted: true,
		RewardAmount:        500,
		RewardDecrement:     7,
		PoolWithdrawPolicy:  PolicyProportional,
		RedisAddr:           "127.0.0.1:6379",
		RedisStream:         "margin:test",

		TransferBreakerFailures: 3,
		TransferBreakerTimeout:  90,
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != original {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

// ---------------------------------------------------------------------------
// LoadConfig error tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	for _, content := range []string{"this-is-not-key-value\n", " = value\n"} {
		path := filepath.Join(t.TempDir(), "config")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfigLine) {
			t.Errorf("LoadConfig %q: got %v, want ErrInvalidConfigLine", content, err)
		}
	}
}

func TestLoadConfigInvalidValue(t *testing.T) {
	tests := []string{
		"fulfill_fee_bps = one\n",
		"reward_amount = -5\n",
		"allow_delete_accepted = maybe\n",
	}
	for _, content := range tests {
		path := filepath.Join(t.TempDir(), "config")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfigValue) {
			t.Errorf("LoadConfig %q: got %v, want ErrInvalidConfigValue", content, err)
		}
	}
}

func TestLoadConfigCommentsAndBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	content := `# This is a comment
network = testnet

# Another comment
loglevel = debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	// Unset fields should retain defaults.
	if cfg.FulfillFeeBps != 100 {
		t.Errorf("FulfillFeeBps = %d, want default 100", cfg.FulfillFeeBps)
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	content := "futurekey = futurevalue\nnetwork = testnet\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
}

func TestLoadConfig_MultipleEquals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("logfile=/tmp/a=b.log\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogFile != "/tmp/a=b.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "/tmp/a=b.log")
	}
}

func TestLoadConfig_PolicyCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("  POOL_WITHDRAW_POLICY = Proportional  \n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PoolWithdrawPolicy != PolicyProportional {
		t.Errorf("PoolWithdrawPolicy = %q, want %q", cfg.PoolWithdrawPolicy, PolicyProportional)
	}
}

// ---------------------------------------------------------------------------
// SaveConfig output format
// ---------------------------------------------------------------------------

func TestSaveConfig_OutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "# Margin Engine Configuration") {
		t.Error("saved config should start with the header comment")
	}
	keys := []string{
		"datadir", "network", "loglevel", "logfile", "platform", "admin",
		"fulfill_fee_bps", "profit_platform_pct", "destroy_platform_pct",
		"min_acceptor_ratio_bps", "max_acceptor_ratio_bps", "allow_delete_accepted",
		"reward_amount", "reward_decrement", "pool_withdraw_policy",
	}
	for _, key := range keys {
		if !strings.Contains(content, "\n"+key+" = ") {
			t.Errorf("saved config should contain key %q", key)
		}
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_network", func(c *Config) { c.Network = "devnet" }, ErrInvalidNetwork},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"bad_platform", func(c *Config) { c.PlatformAccount = "nope" }, ErrInvalidAccount},
		{"bad_admin", func(c *Config) { c.AdminAccount = "abcd" }, ErrInvalidAccount},
		{"fee_over_100pct", func(c *Config) { c.FulfillFeeBps = 10001 }, ErrInvalidPercentage},
		{"profit_pct_over_100", func(c *Config) { c.ProfitPlatformPct = 101 }, ErrInvalidPercentage},
		{"destroy_pct_over_100", func(c *Config) { c.DestroyPlatformPct = 150 }, ErrInvalidPercentage},
		{"zero_min_ratio", func(c *Config) { c.MinAcceptorRatioBps = 0 }, ErrInvalidRatio},
		{"inverted_ratio", func(c *Config) { c.MinAcceptorRatioBps = 25000 }, ErrInvalidRatio},
		{"bad_policy", func(c *Config) { c.PoolWithdrawPolicy = "greedy" }, ErrInvalidPolicy},
		{"breaker_failures_overflow", func(c *Config) { c.TransferBreakerFailures = 1 << 32 }, ErrInvalidConfigValue},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"fee_exactly_100pct", func(c *Config) { c.FulfillFeeBps = 10000 }},
		{"zero_fee", func(c *Config) { c.FulfillFeeBps = 0 }},
		{"profit_pct_100", func(c *Config) { c.ProfitPlatformPct = 100 }},
		{"destroy_pct_0", func(c *Config) { c.DestroyPlatformPct = 0 }},
		{"equal_ratio_bounds", func(c *Config) { c.MaxAcceptorRatioBps = c.MinAcceptorRatioBps }},
		{"regtest", func(c *Config) { c.Network = "regtest" }},
		{"upper_loglevel", func(c *Config) { c.LogLevel = "WARN" }},
		{"hex_platform", func(c *Config) { c.PlatformAccount = strings.Repeat("ab", 20) }},
		{"breaker_disabled", func(c *Config) { c.TransferBreakerFailures = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.margin")
	want := filepath.Join("/home/user/.margin", "config")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestDefaultDataDir_EndsWith_DotMargin(t *testing.T) {
	dir := DefaultDataDir()
	if !strings.HasSuffix(dir, ".margin") {
		t.Errorf("DefaultDataDir() = %q, want suffix %q", dir, ".margin")
	}
}
