// Package horizon provides a client for the Horizon ledger API: account
// lookup, transaction submission, and account streaming.
package horizon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when an account does not exist on the ledger.
var ErrNotFound = errors.New("account not found")

// Error is a Horizon problem response.
type Error struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("horizon error %d: %s: %s", e.Status, e.Title, e.Detail)
}

// Client is a Horizon HTTP client.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new client targeting the given Horizon base URL.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, 10*time.Second)
}

// NewWithTimeout creates a new client with a custom HTTP timeout.
// The timeout applies to request/response exchanges, not to streams.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// LoadAccount fetches an account record by its public key.
// Returns ErrNotFound when the account does not exist on the ledger.
func (c *Client) LoadAccount(ctx context.Context, accountID string) (*Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/accounts/"+url.PathEscape(accountID), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var account Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &account, nil
}

// SubmitTransaction submits a signed transaction envelope to the network.
func (c *Client) SubmitTransaction(ctx context.Context, envelopeXDR string) error {
	form := url.Values{"tx": {envelopeXDR}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transactions", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// readError decodes a Horizon problem payload, falling back to the raw
// status when the body is not a problem document.
func readError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err != nil {
		return &Error{Status: resp.StatusCode, Title: resp.Status}
	}
	var herr Error
	if err := json.Unmarshal(body, &herr); err != nil || herr.Title == "" {
		return &Error{Status: resp.StatusCode, Title: resp.Status, Detail: string(body)}
	}
	if herr.Status == 0 {
		herr.Status = resp.StatusCode
	}
	return &herr
}
