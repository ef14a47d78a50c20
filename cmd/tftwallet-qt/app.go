package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jimber/tft-wallet/config"
	"github.com/jimber/tft-wallet/internal/activation"
	"github.com/jimber/tft-wallet/internal/engine"
	"github.com/jimber/tft-wallet/internal/escrow"
	"github.com/jimber/tft-wallet/internal/horizon"
	"github.com/jimber/tft-wallet/internal/log"
	"github.com/jimber/tft-wallet/internal/storage"
	"github.com/jimber/tft-wallet/internal/vesting"
)

// qtSettings is the persistent configuration written to qt-settings.json.
type qtSettings struct {
	Network  string `json:"network"`
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
}

// App manages application lifecycle, settings, and the wallet engine.
type App struct {
	mu       sync.RWMutex
	ctx      context.Context
	network  string
	dataDir  string
	logLevel string

	cfg      *config.Config
	db       *storage.BadgerDB
	store    *storage.AccountStore
	registry *engine.MemoryRegistry
	eng      *engine.Engine

	wallet *WalletService
}

// NewApp creates the application with default settings.
func NewApp() *App {
	app := &App{
		network:  string(config.Production),
		dataDir:  config.DefaultDataDir(),
		logLevel: "info",
	}
	app.wallet = &WalletService{app: app}
	app.loadSettings()
	return app
}

func (a *App) startup(ctx context.Context) {
	a.setCtx(ctx)
	if err := log.Init(a.logLevel, false, ""); err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
	}
	if err := a.rebuild(); err != nil {
		log.Logger.Error().Err(err).Msg("wallet startup failed")
	}
}

func (a *App) shutdown(_ context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

// rebuild tears down and reconstructs the engine stack for the current
// network and data directory settings.
func (a *App) rebuild() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db != nil {
		a.db.Close()
		a.db = nil
	}

	cfg := config.Default(config.NetworkType(a.network))
	cfg.DataDir = a.dataDir

	values, err := config.LoadFile(cfg.ConfigFile())
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := config.ApplyFileConfig(cfg, values); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := storage.NewBadger(cfg.AccountsDir())
	if err != nil {
		return fmt.Errorf("open wallet database: %w", err)
	}

	timeout := time.Duration(cfg.Horizon.TimeoutSeconds) * time.Second
	registry := engine.NewMemoryRegistry()

	a.cfg = cfg
	a.db = db
	a.store = storage.NewAccountStore(db, string(cfg.Network))
	a.registry = registry
	a.eng = engine.New(cfg, engine.Services{
		Ledger: horizon.NewWithTimeout(cfg.Horizon.URL, timeout),
		Activer: activation.New(cfg.Activation.URL, cfg.Activation.FriendbotURL,
			cfg.Activation.TrustLineURL, timeout),
		Escrow:  escrow.New(cfg.Escrow.URL, timeout),
		Vesting: vesting.New(cfg.Vesting.URL, timeout),
	}, registry)
	return nil
}

func (a *App) setCtx(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
}

// baseCtx returns the application lifetime context under the read lock.
func (a *App) baseCtx() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ctx
}

// engineRefs returns the current engine stack under the read lock.
func (a *App) engineRefs() (*engine.Engine, *engine.MemoryRegistry, *storage.AccountStore, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.eng == nil {
		return nil, nil, nil, fmt.Errorf("wallet is not initialized")
	}
	return a.eng, a.registry, a.store, nil
}

func (a *App) settingsPath() string {
	return filepath.Join(a.dataDir, "qt-settings.json")
}

func (a *App) loadSettings() {
	data, err := os.ReadFile(a.settingsPath())
	if err != nil {
		return // first launch, keep defaults
	}
	var s qtSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return
	}
	if s.Network != "" {
		a.network = s.Network
	}
	if s.DataDir != "" {
		a.dataDir = s.DataDir
	}
	if s.LogLevel != "" {
		a.logLevel = s.LogLevel
	}
}

func (a *App) saveSettings() {
	s := qtSettings{
		Network:  a.network,
		DataDir:  a.dataDir,
		LogLevel: a.logLevel,
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(a.settingsPath()), 0700)
	_ = os.WriteFile(a.settingsPath(), data, 0600)
}

// GetNetwork returns the current network name.
func (a *App) GetNetwork() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.network
}

// SetNetwork switches between production and testnet and rebuilds the
// engine stack.
func (a *App) SetNetwork(network string) error {
	if network != string(config.Production) && network != string(config.Testnet) {
		return fmt.Errorf("unknown network %q", network)
	}
	a.mu.Lock()
	a.network = network
	a.saveSettings()
	a.mu.Unlock()
	return a.rebuild()
}

// GetDataDir returns the current data directory.
func (a *App) GetDataDir() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataDir
}

// SetDataDir updates the data directory and rebuilds the engine stack.
func (a *App) SetDataDir(dir string) error {
	a.mu.Lock()
	a.dataDir = dir
	a.saveSettings()
	a.mu.Unlock()
	return a.rebuild()
}
