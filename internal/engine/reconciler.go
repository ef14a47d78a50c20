package engine

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jimber/tft-wallet/internal/escrow"
	"github.com/jimber/tft-wallet/internal/wallet"
)

// reconcileLocked fetches the account's escrow records and aggregates
// their balances per asset code. A fetch failure degrades to empty views:
// reconciliation never fails the synchronization call.
func (e *Engine) reconcileLocked(ctx context.Context, logger zerolog.Logger, kp *wallet.KeyPair) ([]*escrow.LockedBalance, map[string]decimal.Decimal) {
	records, err := e.escrow.GetLockedBalances(ctx, kp)
	if err != nil {
		logger.Error().Err(err).Msg("locked balance fetch failed")
		return nil, map[string]decimal.Decimal{}
	}
	return records, aggregateLockedBalances(records)
}

// copyRecords clones escrow records for the caller-facing snapshot, so
// the background processor's mutations never race with snapshot readers.
func copyRecords(records []*escrow.LockedBalance) []*escrow.LockedBalance {
	out := make([]*escrow.LockedBalance, len(records))
	for i, rec := range records {
		clone := *rec
		if rec.UnlockTransaction != nil {
			tx := *rec.UnlockTransaction
			clone.UnlockTransaction = &tx
		}
		out[i] = &clone
	}
	return out
}

// processUnlocks drives every escrow record toward release: submit the
// unlock transaction once its time bound has passed, then transfer the
// freed balance back to the wallet account. Records that cannot make
// progress stay pending and are retried on the reconcile interval until
// none remain or ctx is cancelled.
//
// Runs detached from the synchronization call; its outcomes become
// visible on the next synchronization.
func (e *Engine) processUnlocks(ctx context.Context, logger zerolog.Logger, records []*escrow.LockedBalance) {
	t := e.newTicker()
	t.Resume()
	defer t.Stop()

	pending := records
	for {
		pending = e.unlockPass(ctx, logger, pending)
		if len(pending) == 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.Ticks():
		}
	}
}

// unlockPass processes records in fetch order and returns the ones still
// pending. One record's failure never aborts the rest of the pass.
func (e *Engine) unlockPass(ctx context.Context, logger zerolog.Logger, records []*escrow.LockedBalance) []*escrow.LockedBalance {
	var remaining []*escrow.LockedBalance

	for i, rec := range records {
		if ctx.Err() != nil {
			return append(remaining, records[i:]...)
		}

		if rec.UnlockHash != "" {
			tx, err := e.escrow.FetchUnlockTransaction(ctx, rec.UnlockHash)
			if err != nil {
				logger.Info().Err(err).Str("unlock_hash", rec.UnlockHash).
					Msg("failed to fetch unlock transaction")
				remaining = append(remaining, rec)
				continue
			}
			rec.UnlockTransaction = tx

			if tx.MinTime > e.now().Unix() {
				logger.Info().Int64("min_time", tx.MinTime).Str("escrow_id", rec.ID).
					Msg("unlock transaction not due yet")
				remaining = append(remaining, rec)
				continue
			}

			logger.Info().Str("escrow_id", rec.ID).Msg("submitting unlock transaction")
			if err := e.ledger.SubmitTransaction(ctx, tx.EnvelopeXDR); err != nil {
				logger.Error().Err(err).Str("escrow_id", rec.ID).
					Msg("unlock transaction submission failed")
				remaining = append(remaining, rec)
				continue
			}

			// Idempotency marker: a cleared hash means the release is on
			// chain and must not be resubmitted.
			rec.UnlockHash = ""
			rec.UnlockTransaction = nil
		}

		if rec.UnlockHash == "" {
			amount, err := decimal.NewFromString(rec.Balance.Amount)
			if err != nil {
				logger.Warn().Str("escrow_id", rec.ID).Str("amount", rec.Balance.Amount).
					Msg("dropping record with malformed amount")
				continue
			}
			if err := e.escrow.TransferLockedTokens(ctx, rec.KeyPair, rec.ID, rec.Balance.AssetCode, amount); err != nil {
				logger.Error().Err(err).Str("escrow_id", rec.ID).
					Msg("transferring locked tokens failed")
				remaining = append(remaining, rec)
			}
		}
	}

	return remaining
}
