package horizon

// Account is the subset of a Horizon account record the engine consumes.
type Account struct {
	ID       string    `json:"id"`
	Sequence string    `json:"sequence"`
	Balances []Balance `json:"balances"`
}

// Balance is one asset balance held by an account. Amounts stay strings
// on the wire; callers parse them with decimal arithmetic.
type Balance struct {
	AssetType   string `json:"asset_type"`
	AssetCode   string `json:"asset_code"`
	AssetIssuer string `json:"asset_issuer"`
	Amount      string `json:"balance"`
}

// BalanceFor returns the balance entry for the given asset code.
func (a *Account) BalanceFor(assetCode string) (Balance, bool) {
	for _, b := range a.Balances {
		if b.AssetCode == assetCode {
			return b, true
		}
	}
	return Balance{}, false
}

// Transaction is a prebuilt transaction envelope with its validity bound.
// MinTime is the earliest ledger close time (unix seconds) at which the
// network accepts it; zero means no lower bound.
type Transaction struct {
	Hash        string `json:"hash"`
	EnvelopeXDR string `json:"envelope_xdr"`
	MinTime     int64  `json:"min_time"`
}
