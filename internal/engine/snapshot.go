package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jimber/tft-wallet/internal/escrow"
	"github.com/jimber/tft-wallet/internal/horizon"
	"github.com/jimber/tft-wallet/internal/log"
	"github.com/jimber/tft-wallet/internal/wallet"
)

// Params carries the caller-supplied inputs for one account
// synchronization.
type Params struct {
	SeedPhrase string
	Index      uint32
	Name       string
	Tags       []string
	Position   int
	Converted  bool
}

// AccountSnapshot is the unit returned to callers: one account's resolved
// state at synchronization time. Background tasks update the vested
// balance of the registry copy in place; everything else stays as
// assembled until the next synchronization.
type AccountSnapshot struct {
	ID         string
	Name       string
	Tags       []string
	Index      uint32
	Position   int
	Seed       []byte
	KeyPair    *wallet.KeyPair
	SeedPhrase string

	// Balances holds the account's balances for the configured asset
	// codes, in configured order.
	Balances []horizon.Balance

	// LockedTransactions is the caller-facing view of escrow records,
	// ordered by ascending unlock time bound.
	LockedTransactions []*escrow.LockedBalance

	// LockedBalances sums escrowed amounts per asset code. Derived from
	// LockedTransactions at aggregation time, never mutated independently.
	LockedBalances map[string]decimal.Decimal

	VestedBalance decimal.Decimal
	Converted     bool

	// Err marks a degraded snapshot: the account could not be resolved
	// and all balance views are empty.
	Err bool
}

// assembleSnapshot merges resolver, reconciler, and subscriber outputs
// with caller metadata. Pure; any upstream failure is reflected through
// the degraded-snapshot path, never raised here.
func (e *Engine) assembleSnapshot(params Params, account *horizon.Account, kp *wallet.KeyPair, seed []byte,
	locked []*escrow.LockedBalance, aggregated map[string]decimal.Decimal, vested decimal.Decimal, degraded bool) *AccountSnapshot {
	return &AccountSnapshot{
		ID:                 account.ID,
		Name:               params.Name,
		Tags:               params.Tags,
		Index:              params.Index,
		Position:           params.Position,
		Seed:               seed,
		KeyPair:            kp,
		SeedPhrase:         params.SeedPhrase,
		Balances:           filterBalances(account, e.cfg.Currencies),
		LockedTransactions: sortLockedTransactions(locked),
		LockedBalances:     aggregated,
		VestedBalance:      vested,
		Converted:          params.Converted,
		Err:                degraded,
	}
}

// degradedSnapshot assembles an account that could not be resolved: the
// derived identifier with empty balance views and the error flag set, so
// one bad account never breaks the caller's whole list.
func (e *Engine) degradedSnapshot(params Params, kp *wallet.KeyPair, seed []byte) *AccountSnapshot {
	empty := &horizon.Account{ID: kp.Address()}
	return e.assembleSnapshot(params, empty, kp, seed, nil,
		map[string]decimal.Decimal{}, decimal.Zero, true)
}

// filterBalances keeps the balances for supported asset codes, in the
// configured display order.
func filterBalances(account *horizon.Account, currencies []string) []horizon.Balance {
	out := make([]horizon.Balance, 0, len(currencies))
	for _, code := range currencies {
		if b, ok := account.BalanceFor(code); ok {
			out = append(out, b)
		}
	}
	return out
}

// sortLockedTransactions returns the caller-facing ordering: ascending by
// unlock minimum-time bound. Records without a resolved unlock transaction
// compare equal on either side, so the stable sort keeps their relative
// order.
func sortLockedTransactions(records []*escrow.LockedBalance) []*escrow.LockedBalance {
	out := make([]*escrow.LockedBalance, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].UnlockTransaction, out[j].UnlockTransaction
		if a == nil || b == nil {
			return false
		}
		return a.MinTime < b.MinTime
	})
	return out
}

// aggregateLockedBalances sums record amounts per asset code. Malformed
// amounts are logged and skipped rather than poisoning the whole map.
func aggregateLockedBalances(records []*escrow.LockedBalance) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, rec := range records {
		amount, err := decimal.NewFromString(rec.Balance.Amount)
		if err != nil {
			log.Escrow.Warn().
				Str("escrow_id", rec.ID).
				Str("amount", rec.Balance.Amount).
				Msg("skipping locked balance with malformed amount")
			continue
		}
		code := rec.Balance.AssetCode
		totals[code] = totals[code].Add(amount)
	}
	return totals
}
