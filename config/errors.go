// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")

	// ErrInvalidConfigValue indicates a value cannot be parsed for its key.
	ErrInvalidConfigValue = errors.New("config: invalid configuration value")

	// ErrInvalidAccount indicates the platform or admin account cannot be parsed.
	ErrInvalidAccount = errors.New("config: invalid account")

	// ErrInvalidPercentage indicates a percentage above 100 or basis points above 10000.
	ErrInvalidPercentage = errors.New("config: percentage out of range")

	// ErrInvalidRatio indicates the acceptor deposit ratio bounds are empty or inverted.
	ErrInvalidRatio = errors.New("config: invalid acceptor deposit ratio bounds")

	// ErrInvalidPolicy indicates an unknown pool withdrawal policy.
	ErrInvalidPolicy = errors.New("config: invalid pool withdraw policy (must be \"pooled\" or \"proportional\")")
)
