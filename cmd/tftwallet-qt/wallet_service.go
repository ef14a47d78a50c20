package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jimber/tft-wallet/internal/engine"
	"github.com/jimber/tft-wallet/internal/storage"
	"github.com/jimber/tft-wallet/internal/wallet"
)

// syncTimeout bounds one account synchronization round-trip.
const syncTimeout = 2 * time.Minute

// WalletService exposes wallet operations to the frontend. The engine
// runs in-process; seed phrases arrive per call and are never persisted.
type WalletService struct {
	app *App
}

// AccountInfo describes a stored account entry.
type AccountInfo struct {
	Name      string   `json:"name"`
	Tags      []string `json:"tags,omitempty"`
	Index     uint32   `json:"index"`
	Position  int      `json:"position"`
	Converted bool     `json:"converted,omitempty"`
}

// BalanceInfo is one asset balance.
type BalanceInfo struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// LockedInfo describes one escrowed balance awaiting release.
type LockedInfo struct {
	ID         string `json:"id"`
	Asset      string `json:"asset"`
	Amount     string `json:"amount"`
	UnlockTime int64  `json:"unlock_time,omitempty"`
}

// SnapshotInfo is the frontend view of one synchronized account. Key
// material never crosses this boundary.
type SnapshotInfo struct {
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	Tags           []string          `json:"tags,omitempty"`
	Index          uint32            `json:"index"`
	Position       int               `json:"position"`
	Balances       []BalanceInfo     `json:"balances"`
	Locked         []LockedInfo      `json:"locked,omitempty"`
	LockedTotals   map[string]string `json:"locked_totals,omitempty"`
	VestedBalance  string            `json:"vested_balance"`
	Converted      bool              `json:"converted,omitempty"`
	Degraded       bool              `json:"degraded,omitempty"`
	NeedsManualFix bool              `json:"needs_manual_fix,omitempty"`
}

// AddAccountRequest holds the parameters for storing a new account.
type AddAccountRequest struct {
	Name  string `json:"name"`
	Index int    `json:"index"` // negative: pick the first free index
	Tags  string `json:"tags"`  // comma-separated
}

// SyncRequest holds the parameters for synchronizing accounts.
type SyncRequest struct {
	SeedPhrase string `json:"seed_phrase"`
	Name       string `json:"name"` // empty: synchronize all stored accounts
}

// GenerateSeedPhrase creates a new 24-word seed phrase.
func (w *WalletService) GenerateSeedPhrase() (string, error) {
	return wallet.GenerateMnemonic()
}

// ValidateSeedPhrase checks a seed phrase without deriving anything.
func (w *WalletService) ValidateSeedPhrase(phrase string) error {
	return wallet.ValidateMnemonic(phrase)
}

// CheckAddress reports whether a frontend-entered address is well formed.
func (w *WalletService) CheckAddress(address string) error {
	return validateAddress(address)
}

// DeriveAddress returns the account address at the given index.
func (w *WalletService) DeriveAddress(phrase string, index uint32) (string, error) {
	kp, err := wallet.DeriveKeyPair(phrase, index)
	if err != nil {
		return "", err
	}
	return kp.Address(), nil
}

// AddAccount stores a new account entry and returns it.
func (w *WalletService) AddAccount(req AddAccountRequest) (AccountInfo, error) {
	_, _, store, err := w.app.engineRefs()
	if err != nil {
		return AccountInfo{}, err
	}

	rec := storage.AccountRecord{Name: req.Name, Tags: parseTags(req.Tags)}
	if req.Index >= 0 {
		rec.Index = uint32(req.Index)
	} else {
		next, err := store.NextIndex()
		if err != nil {
			return AccountInfo{}, fmt.Errorf("pick derivation index: %w", err)
		}
		rec.Index = next
	}
	existing, err := store.List()
	if err != nil {
		return AccountInfo{}, err
	}
	rec.Position = len(existing)

	if err := store.Add(rec); err != nil {
		return AccountInfo{}, err
	}
	return accountInfo(rec), nil
}

// ListAccounts returns all stored account entries in display order.
func (w *WalletService) ListAccounts() ([]AccountInfo, error) {
	_, _, store, err := w.app.engineRefs()
	if err != nil {
		return nil, err
	}
	records, err := store.List()
	if err != nil {
		return nil, err
	}
	out := make([]AccountInfo, len(records))
	for i, rec := range records {
		out[i] = accountInfo(rec)
	}
	return out, nil
}

// UpdateAccount overwrites a stored account entry.
func (w *WalletService) UpdateAccount(info AccountInfo) error {
	_, _, store, err := w.app.engineRefs()
	if err != nil {
		return err
	}
	return store.Update(storage.AccountRecord{
		Name:      info.Name,
		Tags:      info.Tags,
		Index:     info.Index,
		Position:  info.Position,
		Converted: info.Converted,
	})
}

// RemoveAccount deletes a stored account entry and stops any background
// tasks still running for it.
func (w *WalletService) RemoveAccount(name string) error {
	_, registry, store, err := w.app.engineRefs()
	if err != nil {
		return err
	}
	for _, snap := range registry.Accounts() {
		if snap.Name == name {
			registry.Remove(snap.ID)
		}
	}
	return store.Remove(name)
}

// SyncAccounts synchronizes the named account, or every stored account
// when the request names none. Accounts that fail to resolve come back
// degraded rather than aborting the rest.
func (w *WalletService) SyncAccounts(req SyncRequest) ([]SnapshotInfo, error) {
	eng, _, store, err := w.app.engineRefs()
	if err != nil {
		return nil, err
	}
	if err := wallet.ValidateMnemonic(req.SeedPhrase); err != nil {
		return nil, err
	}

	var records []storage.AccountRecord
	if req.Name != "" {
		rec, err := store.Get(req.Name)
		if err != nil {
			return nil, err
		}
		records = []storage.AccountRecord{rec}
	} else {
		records, err = store.List()
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(w.app.baseCtx(), syncTimeout)
	defer cancel()

	out := make([]SnapshotInfo, 0, len(records))
	for _, rec := range records {
		snap, err := eng.FetchAccount(ctx, engine.Params{
			SeedPhrase: req.SeedPhrase,
			Index:      rec.Index,
			Name:       rec.Name,
			Tags:       rec.Tags,
			Position:   rec.Position,
			Converted:  rec.Converted,
		})
		if errors.Is(err, engine.ErrActivationNeedsManualFlow) {
			sendOSNotification("TFT Wallet",
				fmt.Sprintf("Account %q has no balance to migrate and needs manual activation", rec.Name))
			out = append(out, SnapshotInfo{
				Name:           rec.Name,
				Tags:           rec.Tags,
				Index:          rec.Index,
				Position:       rec.Position,
				VestedBalance:  "0",
				Degraded:       true,
				NeedsManualFix: true,
			})
			continue
		}
		if snap == nil {
			if err != nil {
				return nil, fmt.Errorf("synchronize %q: %w", rec.Name, err)
			}
			continue
		}
		info := snapshotInfo(snap)
		if len(info.Locked) > 0 {
			sendOSNotification("TFT Wallet",
				fmt.Sprintf("Account %q (%s) has locked funds pending release",
					rec.Name, shortenAddress(info.Address)))
		}
		out = append(out, info)
	}
	return out, nil
}

// LiveSnapshot returns the registry's current view of a synchronized
// account, including vested balance updates streamed in since the last
// synchronization.
func (w *WalletService) LiveSnapshot(address string) (SnapshotInfo, error) {
	_, registry, _, err := w.app.engineRefs()
	if err != nil {
		return SnapshotInfo{}, err
	}
	snap, ok := registry.Account(address)
	if !ok {
		return SnapshotInfo{}, fmt.Errorf("account %s is not synchronized", address)
	}
	return snapshotInfo(snap), nil
}

func accountInfo(rec storage.AccountRecord) AccountInfo {
	return AccountInfo{
		Name:      rec.Name,
		Tags:      rec.Tags,
		Index:     rec.Index,
		Position:  rec.Position,
		Converted: rec.Converted,
	}
}

func snapshotInfo(snap *engine.AccountSnapshot) SnapshotInfo {
	info := SnapshotInfo{
		Name:          snap.Name,
		Address:       snap.ID,
		Tags:          snap.Tags,
		Index:         snap.Index,
		Position:      snap.Position,
		VestedBalance: snap.VestedBalance.String(),
		Converted:     snap.Converted,
		Degraded:      snap.Err,
	}
	for _, b := range snap.Balances {
		info.Balances = append(info.Balances, BalanceInfo{Asset: b.AssetCode, Amount: b.Amount})
	}
	for _, rec := range snap.LockedTransactions {
		locked := LockedInfo{
			ID:     rec.ID,
			Asset:  rec.Balance.AssetCode,
			Amount: rec.Balance.Amount,
		}
		if rec.UnlockTransaction != nil {
			locked.UnlockTime = rec.UnlockTransaction.MinTime
		}
		info.Locked = append(info.Locked, locked)
	}
	if len(snap.LockedBalances) > 0 {
		info.LockedTotals = make(map[string]string, len(snap.LockedBalances))
		for code, sum := range snap.LockedBalances {
			info.LockedTotals[code] = sum.String()
		}
	}
	return info
}
