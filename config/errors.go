// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"livenet\" or \"testnet\")")

	// ErrInvalidHost indicates the BitPay host is empty or carries a scheme.
	ErrInvalidHost = errors.New("config: invalid bitpay host")

	// ErrInvalidIdentityURL indicates the identity API base URL is malformed.
	ErrInvalidIdentityURL = errors.New("config: invalid identity API URL")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrInvalidTimeout indicates the HTTP timeout is not a positive duration.
	ErrInvalidTimeout = errors.New("config: http timeout must be positive")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")
)
