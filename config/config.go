// Package config handles wallet engine configuration.
//
// Configuration is split into two categories:
//   - Network endpoints: which Horizon instance and supporting services
//     the engine talks to (differ between production and testnet)
//   - Engine settings: runtime behavior such as the reconcile interval
//     and logging, which can vary per installation
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies the production or test network.
type NetworkType string

const (
	Production NetworkType = "production"
	Testnet    NetworkType = "testnet"
)

// Config holds engine runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Horizon ledger endpoint
	Horizon HorizonConfig

	// Account activation services
	Activation ActivationConfig

	// Locked-balance (escrow unlock) service
	Escrow EscrowConfig

	// Vesting service
	Vesting VestingConfig

	// Asset codes surfaced to callers, in display order.
	Currencies []string `conf:"currencies"`

	// Background synchronization
	Sync SyncConfig

	// Logging
	Log LogConfig
}

// HorizonConfig holds ledger endpoint settings.
type HorizonConfig struct {
	URL            string `conf:"horizon.url"`
	TimeoutSeconds int    `conf:"horizon.timeout"`
}

// ActivationConfig holds account bootstrap settings.
type ActivationConfig struct {
	// URL of the TFChain migration/activation service (production path).
	URL string `conf:"activation.url"`
	// FriendbotURL funds new accounts on test networks.
	FriendbotURL string `conf:"activation.friendbot"`
	// TrustLineURL is the fee-sponsored trust-line funding endpoint.
	TrustLineURL string `conf:"activation.trustline"`
}

// EscrowConfig holds unlock-service settings.
type EscrowConfig struct {
	URL string `conf:"escrow.url"`
}

// VestingConfig holds vesting-service settings.
type VestingConfig struct {
	URL string `conf:"vesting.url"`
	// AssetCode is the asset tracked on vesting accounts.
	AssetCode string `conf:"vesting.asset"`
}

// SyncConfig holds background reconciliation settings.
type SyncConfig struct {
	// ReconcileSeconds is the interval between unlock-processing passes
	// over records that are still pending.
	ReconcileSeconds int `conf:"sync.reconcile"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.tftwallet
//	macOS:   ~/Library/Application Support/TFTWallet
//	Windows: %APPDATA%\TFTWallet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tftwallet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "TFTWallet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "TFTWallet")
		}
		return filepath.Join(home, "AppData", "Roaming", "TFTWallet")
	default:
		return filepath.Join(home, ".tftwallet")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// AccountsDir returns the account metadata database directory.
func (c *Config) AccountsDir() string {
	return filepath.Join(c.NetworkDataDir(), "accounts")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "tftwallet.conf")
}
