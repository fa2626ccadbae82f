// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads walletcore settings from a key = value file with an
// environment overlay.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. WALLETCORE_NETWORK.
const EnvPrefix = "WALLETCORE"

// Config holds walletcore settings.
type Config struct {
	DataDir  string // snapshot database and config file directory
	Network  string // "mainnet", "testnet" or "regtest"
	LogLevel string // "debug", "info", "warn" or "error"
	LogJSON  bool   // structured JSON log output

	// Bitcoin Core JSON-RPC endpoint; empty fields fall back to network presets.
	RPCURL  string
	RPCUser string
	RPCPass string

	// ThorURL is the VeChain Thor REST endpoint.
	ThorURL string

	// DNSUpstream is the validating resolver for payment handles.
	DNSUpstream string
}

// envOverlay mirrors Config for envconfig. Nil fields are unset.
type envOverlay struct {
	DataDir     *string `envconfig:"DATA_DIR"`
	Network     *string `envconfig:"NETWORK"`
	LogLevel    *string `envconfig:"LOG_LEVEL"`
	LogJSON     *bool   `envconfig:"LOG_JSON"`
	RPCURL      *string `envconfig:"RPC_URL"`
	RPCUser     *string `envconfig:"RPC_USER"`
	RPCPass     *string `envconfig:"RPC_PASS"`
	ThorURL     *string `envconfig:"THOR_URL"`
	DNSUpstream *string `envconfig:"DNS_UPSTREAM"`
}

// DefaultDataDir returns ~/.walletcore, or .walletcore if the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".walletcore"
	}
	return filepath.Join(home, ".walletcore")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		Network:  "mainnet",
		LogLevel: "info",
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// SnapshotDBPath returns the wallet snapshot database path inside dataDir.
func SnapshotDBPath(dataDir string) string {
	return filepath.Join(dataDir, "wallets.db")
}

// LoadConfig reads path over DefaultConfig. Blank lines and lines starting
// with # are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseKeyValue(line)
		if !ok {
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

// parseKeyValue splits "key = value" on the first '='.
func parseKeyValue(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	return key, strings.TrimSpace(value), key != ""
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logjson":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("logjson: %w", err)
		}
		c.LogJSON = b
	case "rpcurl":
		c.RPCURL = value
	case "rpcuser":
		c.RPCUser = value
	case "rpcpass":
		c.RPCPass = value
	case "thorurl":
		c.ThorURL = value
	case "dnsupstream":
		c.DNSUpstream = value
	}
	return nil
}

// SaveConfig writes cfg to path, creating the parent directory. The file
// is private to the user since it may hold RPC credentials.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# walletcore configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logjson = %t\n", cfg.LogJSON)
	fmt.Fprintf(&b, "rpcurl = %s\n", cfg.RPCURL)
	fmt.Fprintf(&b, "rpcuser = %s\n", cfg.RPCUser)
	fmt.Fprintf(&b, "rpcpass = %s\n", cfg.RPCPass)
	fmt.Fprintf(&b, "thorurl = %s\n", cfg.ThorURL)
	fmt.Fprintf(&b, "dnsupstream = %s\n", cfg.DNSUpstream)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays WALLETCORE_* environment variables on cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverlay
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEnv, err)
	}
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&cfg.DataDir, env.DataDir)
	setString(&cfg.Network, env.Network)
	setString(&cfg.LogLevel, env.LogLevel)
	setString(&cfg.RPCURL, env.RPCURL)
	setString(&cfg.RPCUser, env.RPCUser)
	setString(&cfg.RPCPass, env.RPCPass)
	setString(&cfg.ThorURL, env.ThorURL)
	setString(&cfg.DNSUpstream, env.DNSUpstream)
	if env.LogJSON != nil {
		cfg.LogJSON = *env.LogJSON
	}
	return nil
}

// Load reads the config file in dataDir, if any, applies the environment
// and validates the result. A missing file is not an error.
func Load(dataDir string) (Config, error) {
	cfg, err := LoadConfig(ConfigPath(dataDir))
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return cfg, err
	}
	if cfg.DataDir == DefaultDataDir() {
		cfg.DataDir = dataDir
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, ValidateConfig(cfg)
}
