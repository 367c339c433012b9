// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/bitfsorg/libmargin-go/account"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	for _, kv := range [][2]string{{"platform", cfg.PlatformAccount}, {"admin", cfg.AdminAccount}} {
		if kv[1] == "" {
			continue
		}
		if _, err := account.Parse(kv[1]); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidAccount, kv[0], err)
		}
	}

	if cfg.FulfillFeeBps > 10000 {
		return fmt.Errorf("%w: fulfill_fee_bps %d", ErrInvalidPercentage, cfg.FulfillFeeBps)
	}
	if cfg.ProfitPlatformPct > 100 {
		return fmt.Errorf("%w: profit_platform_pct %d", ErrInvalidPercentage, cfg.ProfitPlatformPct)
	}
	if cfg.DestroyPlatformPct > 100 {
		return fmt.Errorf("%w: destroy_platform_pct %d", ErrInvalidPercentage, cfg.DestroyPlatformPct)
	}

	if cfg.MinAcceptorRatioBps == 0 || cfg.MinAcceptorRatioBps > cfg.MaxAcceptorRatioBps {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRatio, cfg.MinAcceptorRatioBps, cfg.MaxAcceptorRatioBps)
	}

	if cfg.PoolWithdrawPolicy != PolicyPooled && cfg.PoolWithdrawPolicy != PolicyProportional {
		return ErrInvalidPolicy
	}

	if cfg.TransferBreakerFailures > math.MaxUint32 {
		return fmt.Errorf("%w: transfer_breaker_failures %d", ErrInvalidConfigValue, cfg.TransferBreakerFailures)
	}

	return nil
}
