// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads, saves and validates resolver configuration.
//
// The on-disk format is a flat "key = value" file with "#" comments.
// Environment variables prefixed with LIBSCAN_ (optionally read from a
// .env file) override file values.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Network names understood by the resolver.
const (
	NetworkLivenet = "livenet"
	NetworkTestnet = "testnet"
)

// Default hosts for each network.
const (
	ProdHost = "bitpay.com"
	TestHost = "test.bitpay.com"
)

const (
	configFileName   = "config"
	trackingFileName = "tracking.db"
	envPrefix        = "LIBSCAN_"
)

// Config holds all runtime settings.
type Config struct {
	DataDir string
	Network string

	// BitPayHost overrides DefaultHost(Network) when set.
	BitPayHost  string
	// IdentityURL overrides "https://" + Host() when set.
	IdentityURL string

	LogLevel    string
	LogFile     string
	TrackingDB  string
	HTTPTimeout time.Duration
}

// DefaultConfig returns a livenet configuration rooted at DefaultDataDir.
func DefaultConfig() Config {
	dataDir := DefaultDataDir()
	return Config{
		DataDir:     dataDir,
		Network:     NetworkLivenet,
		BitPayHost:  "",
		IdentityURL: "",
		LogLevel:    "info",
		LogFile:     "",
		TrackingDB:  filepath.Join(dataDir, trackingFileName),
		HTTPTimeout: 30 * time.Second,
	}
}

// DefaultHost returns the BitPay host serving the given network.
func DefaultHost(network string) string {
	if network == NetworkTestnet {
		return TestHost
	}
	return ProdHost
}

// Host returns the BitPay host in effect for c.
func (c Config) Host() string {
	if c.BitPayHost != "" {
		return c.BitPayHost
	}
	return DefaultHost(c.Network)
}

// IdentityBaseURL returns the identity API base URL in effect for c.
func (c Config) IdentityBaseURL() string {
	if c.IdentityURL != "" {
		return c.IdentityURL
	}
	return "https://" + c.Host()
}

// DefaultDataDir returns ~/.libscan, or .libscan in the working directory
// when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".libscan"
	}
	return filepath.Join(home, ".libscan")
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), configFileName)
}

// LoadConfig reads a config file on top of DefaultConfig.
// Unknown keys are ignored so newer files remain readable.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

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
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# libscan configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "bitpayhost = %s\n", cfg.BitPayHost)
	fmt.Fprintf(&b, "identityurl = %s\n", cfg.IdentityURL)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	fmt.Fprintf(&b, "trackingdb = %s\n", cfg.TrackingDB)
	fmt.Fprintf(&b, "httptimeout = %s\n", cfg.HTTPTimeout)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// LoadEnv overlays LIBSCAN_* variables onto cfg. Variables from envFile
// are applied first and the process environment wins over them.
// A missing envFile is not an error.
func LoadEnv(cfg Config, envFile string) (Config, error) {
	vars := map[string]string{}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config: read env file: %w", err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, envPrefix) {
			vars[k] = v
		}
	}

	for k, v := range vars {
		if !strings.HasPrefix(k, envPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(k, envPrefix))
		if err := cfg.set(key, v); err != nil {
			return cfg, fmt.Errorf("config: env %s: %w", k, err)
		}
	}
	return cfg, nil
}

// set assigns a single key. Unknown keys are ignored.
func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "bitpayhost":
		c.BitPayHost = value
	case "identityurl":
		c.IdentityURL = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "trackingdb":
		c.TrackingDB = value
	case "httptimeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		c.HTTPTimeout = d
	}
	return nil
}

// parseKeyValue splits "key = value" on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}
