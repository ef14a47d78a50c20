package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jimber/tft-wallet/internal/horizon"
)

// checkAndSubscribe looks up the account's vesting account. When one
// exists it returns the current vested balance and starts a live stream
// that keeps the registry entry's vested balance current; otherwise the
// vested balance is zero and no stream is opened.
//
// Lookup and stream failures never fail the synchronization call.
func (e *Engine) checkAndSubscribe(ctx, bgCtx context.Context, logger zerolog.Logger, accountID string) decimal.Decimal {
	vestingAccount, err := e.vesting.CheckVesting(ctx, accountID)
	if err != nil {
		logger.Error().Err(err).Msg("vesting lookup failed")
		return decimal.Zero
	}
	if vestingAccount == nil {
		return decimal.Zero
	}

	initial := e.vestedAmount(logger, vestingAccount)

	logger.Info().Str("vesting_id", vestingAccount.ID).Msg("vesting account found, subscribing")
	go e.streamVesting(bgCtx, logger, vestingAccount.ID, accountID)

	return initial
}

// streamVesting follows the vesting account from "now" and applies each
// update as a field-level write keyed by the wallet account identifier.
// Updates for accounts no longer in the registry are dropped. Dropped
// connections reopen after a delay until bgCtx is cancelled.
func (e *Engine) streamVesting(ctx context.Context, logger zerolog.Logger, vestingID, accountID string) {
	for {
		err := e.ledger.StreamAccount(ctx, vestingID, horizon.CursorNow, func(msg horizon.Account) {
			amount := e.vestedAmount(logger, &msg)
			if !e.registry.SetVestedBalance(accountID, amount) {
				logger.Debug().Msg("vesting update for unregistered account dropped")
			}
		})
		if err == nil {
			// Cancelled: the account was removed from the registry.
			return
		}
		logger.Warn().Err(err).Str("vesting_id", vestingID).Msg("vesting stream interrupted")

		select {
		case <-ctx.Done():
			return
		case <-time.After(streamRetryDelay):
		}
	}
}

// vestedAmount extracts the designated asset's balance from a vesting
// account record.
func (e *Engine) vestedAmount(logger zerolog.Logger, account *horizon.Account) decimal.Decimal {
	b, ok := account.BalanceFor(e.cfg.Vesting.AssetCode)
	if !ok {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(b.Amount)
	if err != nil {
		logger.Warn().Str("amount", b.Amount).Msg("malformed vested balance")
		return decimal.Zero
	}
	return amount
}
