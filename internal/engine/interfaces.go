package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jimber/tft-wallet/internal/escrow"
	"github.com/jimber/tft-wallet/internal/horizon"
	"github.com/jimber/tft-wallet/internal/wallet"
)

// Collaborator contracts. The concrete implementations live in the
// horizon, activation, escrow, and vesting packages; the engine only
// depends on these interfaces so tests can substitute fakes.

// Ledger queries and mutates the Stellar ledger.
type Ledger interface {
	LoadAccount(ctx context.Context, accountID string) (*horizon.Account, error)
	SubmitTransaction(ctx context.Context, envelopeXDR string) error
	StreamAccount(ctx context.Context, accountID, cursor string, onMessage func(horizon.Account)) error
}

// Activator bootstraps accounts that do not exist on the ledger yet.
type Activator interface {
	Migrate(ctx context.Context, kp *wallet.KeyPair, revineAddress string) error
	FundTestAccount(ctx context.Context, address string) error
	AddTrustLine(ctx context.Context, kp *wallet.KeyPair, assetCode string) error
}

// EscrowService tracks time-locked balances and their release transactions.
type EscrowService interface {
	GetLockedBalances(ctx context.Context, kp *wallet.KeyPair) ([]*escrow.LockedBalance, error)
	FetchUnlockTransaction(ctx context.Context, hash string) (*horizon.Transaction, error)
	TransferLockedTokens(ctx context.Context, kp *wallet.KeyPair, id, assetCode string, amount decimal.Decimal) error
}

// VestingService looks up vesting accounts tied to a wallet account.
type VestingService interface {
	CheckVesting(ctx context.Context, accountID string) (*horizon.Account, error)
}
