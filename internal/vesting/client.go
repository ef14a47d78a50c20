// Package vesting queries the vesting service for vesting accounts tied
// to a wallet identity.
package vesting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jimber/tft-wallet/internal/horizon"
)

// Client is a vesting-service HTTP client.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given vesting-service base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// CheckVesting looks up the vesting account for the given wallet account.
// Returns (nil, nil) when no vesting account exists.
func (c *Client) CheckVesting(ctx context.Context, accountID string) (*horizon.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/vesting_accounts/"+url.PathEscape(accountID), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vesting request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vesting service: status %d", resp.StatusCode)
	}

	var account horizon.Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("decode vesting account: %w", err)
	}
	return &account, nil
}
