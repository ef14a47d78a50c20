// Package escrow talks to the unlock service that tracks time-locked
// (escrowed) token balances and their release transactions.
package escrow

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jimber/tft-wallet/internal/horizon"
	"github.com/jimber/tft-wallet/internal/wallet"
)

// LockedBalance is one escrow entry for a wallet account.
//
// UnlockHash points at the not-yet-fetched release transaction; it is
// cleared together with UnlockTransaction once the release has been
// submitted, which marks the record safe for a direct transfer.
type LockedBalance struct {
	// ID is the escrow account identifier.
	ID string

	// Balance is the escrowed asset and amount.
	Balance horizon.Balance

	// UnlockHash references the release transaction, empty when none is
	// pending.
	UnlockHash string

	// UnlockTransaction caches the fetched release transaction.
	UnlockTransaction *horizon.Transaction

	// KeyPair is the wallet key authorized to move the escrowed funds.
	KeyPair *wallet.KeyPair
}

// lockedBalanceRecord is the unlock service's wire shape.
type lockedBalanceRecord struct {
	ID         string `json:"id"`
	AssetCode  string `json:"asset_code"`
	Amount     string `json:"amount"`
	UnlockHash string `json:"unlock_hash"`
}

// Client is an unlock-service HTTP client.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given unlock-service base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetLockedBalances fetches all escrow records for the account behind kp.
// Records come back in service order and are stamped with the signing key.
func (c *Client) GetLockedBalances(ctx context.Context, kp *wallet.KeyPair) ([]*LockedBalance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/escrows/"+url.PathEscape(kp.Address()), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("escrow request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("escrow service: status %d", resp.StatusCode)
	}

	var records []lockedBalanceRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode escrow records: %w", err)
	}

	out := make([]*LockedBalance, 0, len(records))
	for _, r := range records {
		out = append(out, &LockedBalance{
			ID: r.ID,
			Balance: horizon.Balance{
				AssetCode: r.AssetCode,
				Amount:    r.Amount,
			},
			UnlockHash: r.UnlockHash,
			KeyPair:    kp,
		})
	}
	return out, nil
}

// FetchUnlockTransaction fetches the release transaction behind an unlock
// hash, including its minimum-time bound.
func (c *Client) FetchUnlockTransaction(ctx context.Context, hash string) (*horizon.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/unlockhash/"+url.PathEscape(hash), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unlock transaction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unlock service: status %d", resp.StatusCode)
	}

	var tx horizon.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return nil, fmt.Errorf("decode unlock transaction: %w", err)
	}
	return &tx, nil
}

// TransferLockedTokens moves an unlocked escrow balance to the owning
// wallet account. The request is authenticated with the wallet key.
func (c *Client) TransferLockedTokens(ctx context.Context, kp *wallet.KeyPair, id, assetCode string, amount decimal.Decimal) error {
	msg := id + ":" + assetCode + ":" + amount.String()
	sig := kp.Sign([]byte(msg))

	payload, err := json.Marshal(map[string]string{
		"escrow_id":  id,
		"address":    kp.Address(),
		"asset_code": assetCode,
		"amount":     amount.String(),
		"signature":  hex.EncodeToString(sig),
	})
	if err != nil {
		return fmt.Errorf("marshal transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transfer", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("transfer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		var svcErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &svcErr); err == nil && svcErr.Error != "" {
			return fmt.Errorf("transfer: %s", svcErr.Error)
		}
		return fmt.Errorf("transfer: status %d", resp.StatusCode)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
