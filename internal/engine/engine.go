// Package engine implements account synchronization: deterministic key
// derivation, on-chain account resolution with activation and trust-line
// bootstrapping, locked-balance reconciliation, and vesting subscription,
// merged into immutable account snapshots.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/rs/zerolog"

	"github.com/jimber/tft-wallet/config"
	"github.com/jimber/tft-wallet/internal/activation"
	"github.com/jimber/tft-wallet/internal/horizon"
	"github.com/jimber/tft-wallet/internal/log"
	"github.com/jimber/tft-wallet/internal/wallet"
)

// maxTrustLineRetries bounds re-validation after a trust-line request.
// Attempts 0 through maxTrustLineRetries load and validate; the next
// iteration aborts before touching the ledger again.
const maxTrustLineRetries = 3

// streamRetryDelay is the pause before reopening a dropped vesting stream.
const streamRetryDelay = 10 * time.Second

// Services bundles the engine's network collaborators.
type Services struct {
	Ledger  Ledger
	Activer Activator
	Escrow  EscrowService
	Vesting VestingService
}

// Engine coordinates account synchronization against the injected
// collaborators. Safe for concurrent use across accounts; per-account
// synchronization is single-flight.
type Engine struct {
	cfg      *config.Config
	ledger   Ledger
	activer  Activator
	escrow   EscrowService
	vesting  VestingService
	registry Registry
	log      zerolog.Logger

	// newTicker builds the reconciler's pass scheduler; tests substitute
	// a force ticker.
	newTicker func() ticker.Ticker

	// now is the reconciler's clock.
	now func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New creates an engine for the given configuration, collaborators, and
// caller-owned registry.
func New(cfg *config.Config, svcs Services, registry Registry) *Engine {
	interval := time.Duration(cfg.Sync.ReconcileSeconds) * time.Second
	return &Engine{
		cfg:      cfg,
		ledger:   svcs.Ledger,
		activer:  svcs.Activer,
		escrow:   svcs.Escrow,
		vesting:  svcs.Vesting,
		registry: registry,
		log:      log.Engine,
		newTicker: func() ticker.Ticker {
			return ticker.New(interval)
		},
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

// requiredAsset is the asset whose trust line every resolved account must
// hold: the first configured currency.
func (e *Engine) requiredAsset() string {
	return e.cfg.Currencies[0]
}

// FetchAccount synchronizes one account: derives its keypair, resolves
// (and if needed activates) the on-chain account, reconciles locked
// balances, starts the vesting subscription, and returns the assembled
// snapshot after registering it.
//
// The returned error is one of the kinds in errors.go. A non-nil snapshot
// may accompany ErrRetryExceeded and ErrAccountFetch: a degraded entry
// the caller can still display. Background tasks outlive the call and
// stop when the account is removed from the registry.
func (e *Engine) FetchAccount(ctx context.Context, params Params) (*AccountSnapshot, error) {
	kp, err := wallet.DeriveKeyPair(params.SeedPhrase, params.Index)
	if err != nil {
		return nil, fmt.Errorf("derive keypair: %w", err)
	}
	seed, err := wallet.SeedMaterial(params.SeedPhrase)
	if err != nil {
		return nil, fmt.Errorf("seed material: %w", err)
	}
	address := kp.Address()

	if !e.acquire(address) {
		return nil, ErrSyncInProgress
	}
	defer e.release(address)

	logger := e.log.With().Str("account_id", address).Uint32("index", params.Index).Logger()

	account, err := e.resolve(ctx, logger, kp, params)
	if err != nil {
		if errors.Is(err, ErrActivationNeedsManualFlow) {
			return nil, err
		}
		snap := e.degradedSnapshot(params, kp, seed)
		e.registry.Put(snap, nil)
		if errors.Is(err, ErrActivationFailed) {
			// Degraded entry, surfaced without an error so one broken
			// account does not abort the caller's list.
			logger.Error().Err(err).Msg("activation failed, returning degraded snapshot")
			return snap, nil
		}
		return snap, err
	}

	// Background tasks are tied to the registry entry, not the caller's
	// synchronization context.
	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	records, aggregated := e.reconcileLocked(ctx, logger, kp)
	snapshotView := copyRecords(records)
	if len(records) > 0 {
		go e.processUnlocks(bgCtx, logger, records)
	}

	vested := e.checkAndSubscribe(ctx, bgCtx, logger, account.ID)

	snap := e.assembleSnapshot(params, account, kp, seed, snapshotView, aggregated, vested, false)
	e.registry.Put(snap, cancel)
	return snap, nil
}

// resolve loads the account, activating it when absent, and re-validates
// the required trust line within the retry ceiling.
func (e *Engine) resolve(ctx context.Context, logger zerolog.Logger, kp *wallet.KeyPair, params Params) (*horizon.Account, error) {
	address := kp.Address()

	for attempt := 0; ; attempt++ {
		if attempt > maxTrustLineRetries {
			logger.Error().Int("attempts", attempt).Msg("trust line never settled, giving up")
			return nil, ErrRetryExceeded
		}

		account, err := e.ledger.LoadAccount(ctx, address)
		if errors.Is(err, horizon.ErrNotFound) {
			account, err = e.activateAndReload(ctx, logger, kp, params)
			if err != nil {
				return nil, err
			}
		} else if err != nil {
			logger.Error().Err(err).Msg("account load failed")
			return nil, fmt.Errorf("%w: %v", ErrAccountFetch, err)
		}

		if e.validateTrustLines(ctx, logger, account, kp) {
			return account, nil
		}
		logger.Info().Int("attempt", attempt).Msg("trust line missing, revalidating")
	}
}

// activateAndReload runs the activation protocol and reloads the account.
// Production migrates the TFChain balance to the derived address; test
// networks use Friendbot.
func (e *Engine) activateAndReload(ctx context.Context, logger zerolog.Logger, kp *wallet.KeyPair, params Params) (*horizon.Account, error) {
	if e.cfg.Network == config.Production {
		revineAddress, err := wallet.RevineAddressFromSeed(params.SeedPhrase, params.Index)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrActivationFailed, err)
		}
		if err := e.activer.Migrate(ctx, kp, revineAddress); err != nil {
			if errors.Is(err, activation.ErrZeroBalance) {
				// Terminal: nothing to migrate, caller redirects to the
				// manual verification flow.
				return nil, ErrActivationNeedsManualFlow
			}
			logger.Error().Err(err).Msg("account migration failed")
			return nil, fmt.Errorf("%w: %v", ErrActivationFailed, err)
		}
	} else {
		if err := e.activer.FundTestAccount(ctx, kp.Address()); err != nil {
			logger.Error().Err(err).Msg("friendbot funding failed")
			return nil, fmt.Errorf("%w: %v", ErrActivationFailed, err)
		}
	}

	logger.Info().Msg("account activated, reloading")
	account, err := e.ledger.LoadAccount(ctx, kp.Address())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivationFailed, err)
	}
	return account, nil
}

// validateTrustLines reports whether the account holds the required trust
// line. When missing it requests the trust line as a side effect and
// reports false; the resolver re-fetches and re-validates.
func (e *Engine) validateTrustLines(ctx context.Context, logger zerolog.Logger, account *horizon.Account, kp *wallet.KeyPair) bool {
	asset := e.requiredAsset()
	if _, ok := account.BalanceFor(asset); ok {
		return true
	}
	if err := e.activer.AddTrustLine(ctx, kp, asset); err != nil {
		logger.Warn().Err(err).Str("asset", asset).Msg("trust line request failed")
	}
	return false
}

func (e *Engine) acquire(address string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[address]; busy {
		return false
	}
	e.inFlight[address] = struct{}{}
	return true
}

func (e *Engine) release(address string) {
	e.mu.Lock()
	delete(e.inFlight, address)
	e.mu.Unlock()
}
