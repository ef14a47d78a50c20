// Package activation bootstraps freshly derived accounts on the ledger:
// TFChain migration in production, Friendbot funding on testnet, and
// fee-sponsored trust-line funding.
package activation

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jimber/tft-wallet/internal/wallet"
)

// ErrZeroBalance is the terminal activation condition: the TFChain address
// holds nothing, so there is nothing to migrate and the caller must fall
// back to an out-of-band verification flow.
var ErrZeroBalance = errors.New("tfchain address has 0 balance, no need to activate an account")

// zeroBalanceText is the exact error string the activation service sends
// for the zero-balance case.
const zeroBalanceText = "Tfchain address has 0 balance, no need to activate an account"

// noContentText appears in the service's alternate empty-wallet response.
const noContentText = "GET: no content available (code: 204)"

// Client talks to the activation, Friendbot, and trust-line services.
type Client struct {
	activationURL string
	friendbotURL  string
	trustLineURL  string
	http          *http.Client
}

// New creates a client for the given service endpoints. friendbotURL may
// be empty on production networks.
func New(activationURL, friendbotURL, trustLineURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		activationURL: strings.TrimRight(activationURL, "/"),
		friendbotURL:  strings.TrimRight(friendbotURL, "/"),
		trustLineURL:  strings.TrimRight(trustLineURL, "/"),
		http:          &http.Client{Timeout: timeout},
	}
}

// serviceError is the error payload shape shared by the token services.
type serviceError struct {
	Error string `json:"error"`
}

// Migrate asks the activation service to move the TFChain balance behind
// revineAddress to the derived Stellar account, activating it.
// Returns ErrZeroBalance when there is nothing to migrate.
func (c *Client) Migrate(ctx context.Context, kp *wallet.KeyPair, revineAddress string) error {
	payload, err := json.Marshal(map[string]string{
		"address":         kp.Address(),
		"tfchain_address": revineAddress,
	})
	if err != nil {
		return fmt.Errorf("marshal migration request: %w", err)
	}

	body, status, err := c.post(ctx, c.activationURL+"/migrate", payload)
	if err != nil {
		return fmt.Errorf("migration request: %w", err)
	}
	if status == http.StatusOK || status == http.StatusCreated {
		return nil
	}

	var svcErr serviceError
	if err := json.Unmarshal(body, &svcErr); err == nil {
		if svcErr.Error == zeroBalanceText || strings.Contains(svcErr.Error, noContentText) {
			return ErrZeroBalance
		}
		if svcErr.Error != "" {
			return fmt.Errorf("activation service: %s", svcErr.Error)
		}
	}
	return fmt.Errorf("activation service: status %d", status)
}

// FundTestAccount activates an account through Friendbot. Test networks only.
func (c *Client) FundTestAccount(ctx context.Context, address string) error {
	if c.friendbotURL == "" {
		return fmt.Errorf("friendbot URL not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.friendbotURL+"/?addr="+url.QueryEscape(address), nil)
	if err != nil {
		return fmt.Errorf("build friendbot request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("friendbot request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("friendbot: status %d", resp.StatusCode)
	}
	return nil
}

// AddTrustLine asks the trust-line service to establish the asset trust
// line for the account, fee-sponsored. The request is authenticated by
// signing the address and asset code with the account key.
func (c *Client) AddTrustLine(ctx context.Context, kp *wallet.KeyPair, assetCode string) error {
	address := kp.Address()
	sig := kp.Sign([]byte(address + ":" + assetCode))

	payload, err := json.Marshal(map[string]string{
		"address":    address,
		"asset_code": assetCode,
		"signature":  hex.EncodeToString(sig),
	})
	if err != nil {
		return fmt.Errorf("marshal trust-line request: %w", err)
	}

	body, status, err := c.post(ctx, c.trustLineURL+"/fund_trustline", payload)
	if err != nil {
		return fmt.Errorf("trust-line request: %w", err)
	}
	if status == http.StatusOK || status == http.StatusCreated {
		return nil
	}

	var svcErr serviceError
	if err := json.Unmarshal(body, &svcErr); err == nil && svcErr.Error != "" {
		return fmt.Errorf("trust-line service: %s", svcErr.Error)
	}
	return fmt.Errorf("trust-line service: status %d", status)
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
