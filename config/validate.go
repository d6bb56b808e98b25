// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"
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

	if cfg.Network != NetworkLivenet && cfg.Network != NetworkTestnet {
		return ErrInvalidNetwork
	}

	if strings.Contains(cfg.BitPayHost, "://") || strings.Contains(cfg.BitPayHost, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidHost, cfg.BitPayHost)
	}

	if err := validateURL(cfg.IdentityBaseURL()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIdentityURL, err)
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.HTTPTimeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
