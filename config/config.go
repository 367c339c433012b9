// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Withdrawal policies for the user side of a distribution pool.
const (
	// PolicyPooled lets any shareholder draw from the whole pending pool, first come first served.
	PolicyPooled = "pooled"
	// PolicyProportional caps each shareholder at its share-weighted entitlement.
	PolicyProportional = "proportional"
)

// Config holds the engine settings. Percentages and ratios are read once at
// engine construction and are not recomputed afterwards.
type Config struct {
	DataDir  string
	Network  string // mainnet, testnet or regtest; selects the address encoding
	LogLevel string
	LogFile  string

	PlatformAccount string // receives platform cuts of both pools
	AdminAccount    string // owner of the whitelist

	FulfillFeeBps       uint64 // fee on combined locked deposits at fulfillment
	ProfitPlatformPct   uint64 // platform cut of Profit Pool inflow
	DestroyPlatformPct  uint64 // platform cut of Destroy Fund inflow
	MinAcceptorRatioBps uint64 // acceptor deposit floor, relative to creator deposit
	MaxAcceptorRatioBps uint64 // acceptor deposit ceiling, relative to creator deposit
	AllowDeleteAccepted bool

	RewardAmount    uint64
	RewardDecrement uint64

	PoolWithdrawPolicy string

	RedisAddr   string // host:port; when set, committed events are also appended to a Redis stream
	RedisStream string

	// The outbound transfer breaker opens after TransferBreakerFailures
	// consecutive failures (0 disables it) and retries after
	// TransferBreakerTimeout seconds.
	TransferBreakerFailures uint64
	TransferBreakerTimeout  uint64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		DataDir:             DefaultDataDir(),
		Network:             "mainnet",
		LogLevel:            "info",
		FulfillFeeBps:       100,
		ProfitPlatformPct:   90,
		DestroyPlatformPct:  20,
		MinAcceptorRatioBps: 15000,
		MaxAcceptorRatioBps: 20000,
		RewardAmount:        10000,
		RewardDecrement:     100,
		PoolWithdrawPolicy:  PolicyPooled,

		TransferBreakerFailures: 5,
		TransferBreakerTimeout:  30,
	}
}

// DefaultDataDir returns ~/.margin, or ./.margin if the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".margin"
	}
	return filepath.Join(home, ".margin")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// IsMainnet reports whether addresses are encoded for mainnet.
func (c Config) IsMainnet() bool {
	return c.Network == "mainnet"
}

// LoadConfig reads a key = value config file. Blank lines and lines starting
// with '#' are skipped, unknown keys are ignored, and unset keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return Config{}, fmt.Errorf("%w: line %d: %q", err, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return Config{}, fmt.Errorf("%w: line %d", err, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("config: read: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Margin Engine Configuration\n\n")
	for _, kv := range cfg.pairs() {
		fmt.Fprintf(&b, "%s = %s\n", kv[0], kv[1])
	}
	return os.WriteFile(path, []byte(b.String()), 0600)
}

// parseKeyValue splits a line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", ErrInvalidConfigLine
	}
	key := strings.ToLower(strings.TrimSpace(line[:idx]))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(line[idx+1:]), nil
}

func (c Config) pairs() [][2]string {
	u := func(n uint64) string { return strconv.FormatUint(n, 10) }
	return [][2]string{
		{"datadir", c.DataDir},
		{"network", c.Network},
		{"loglevel", c.LogLevel},
		{"logfile", c.LogFile},
		{"platform", c.PlatformAccount},
		{"admin", c.AdminAccount},
		{"fulfill_fee_bps", u(c.FulfillFeeBps)},
		{"profit_platform_pct", u(c.ProfitPlatformPct)},
		{"destroy_platform_pct", u(c.DestroyPlatformPct)},
		{"min_acceptor_ratio_bps", u(c.MinAcceptorRatioBps)},
		{"max_acceptor_ratio_bps", u(c.MaxAcceptorRatioBps)},
		{"allow_delete_accepted", strconv.FormatBool(c.AllowDeleteAccepted)},
		{"reward_amount", u(c.RewardAmount)},
		{"reward_decrement", u(c.RewardDecrement)},
		{"pool_withdraw_policy", c.PoolWithdrawPolicy},
		{"redis_addr", c.RedisAddr},
		{"redis_stream", c.RedisStream},
		{"transfer_breaker_failures", u(c.TransferBreakerFailures)},
		{"transfer_breaker_timeout", u(c.TransferBreakerTimeout)},
	}
}

func (c *Config) set(key, value string) error {
	uintField := map[string]*uint64{
		"fulfill_fee_bps":        &c.FulfillFeeBps,
		"profit_platform_pct":    &c.ProfitPlatformPct,
		"destroy_platform_pct":   &c.DestroyPlatformPct,
		"min_acceptor_ratio_bps": &c.MinAcceptorRatioBps,
		"max_acceptor_ratio_bps": &c.MaxAcceptorRatioBps,
		"reward_amount":          &c.RewardAmount,
		"reward_decrement":       &c.RewardDecrement,

		"transfer_breaker_failures": &c.TransferBreakerFailures,
		"transfer_breaker_timeout":  &c.TransferBreakerTimeout,
	}
	if p, ok := uintField[key]; ok {
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s = %q", ErrInvalidConfigValue, key, value)
		}
		*p = n
		return nil
	}

	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "platform":
		c.PlatformAccount = value
	case "admin":
		c.AdminAccount = value
	case "redis_addr":
		c.RedisAddr = value
	case "redis_stream":
		c.RedisStream = value
	case "allow_delete_accepted":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s = %q", ErrInvalidConfigValue, key, value)
		}
		c.AllowDeleteAccepted = v
	case "pool_withdraw_policy":
		c.PoolWithdrawPolicy = strings.ToLower(value)
	}
	return nil
}
