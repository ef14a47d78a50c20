package horizon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// CursorNow starts a stream at the current ledger, skipping history.
const CursorNow = "now"

// StreamAccount opens a server-sent-event stream of account updates and
// invokes onMessage for every account record received. It blocks until the
// stream ends: a nil error means ctx was cancelled, anything else is a
// transport failure and the caller decides whether to reconnect.
//
// Streaming uses its own HTTP request without the client-wide timeout,
// since the connection is expected to stay open indefinitely.
func (c *Client) StreamAccount(ctx context.Context, accountID, cursor string, onMessage func(Account)) error {
	streamURL := c.baseURL + "/accounts/" + url.PathEscape(accountID)
	if cursor != "" {
		streamURL += "?cursor=" + url.QueryEscape(cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// No Timeout: the stream lives until cancellation or disconnect.
	client := &http.Client{Transport: c.http.Transport}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()

		// Events are terminated by a blank line.
		if line == "" {
			payload := data.String()
			data.Reset()
			if msg, ok := decodeAccountEvent(payload); ok {
				onMessage(msg)
			}
			continue
		}
		if strings.HasPrefix(line, "data:") {
			data.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
		// Comment and event-type lines carry nothing we use.
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("read stream: %w", err)
	}
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("stream closed by server")
}

// decodeAccountEvent parses one SSE data payload. Horizon sends "hello"
// and "byebye" markers that are not account records.
func decodeAccountEvent(payload string) (Account, bool) {
	if payload == "" || payload == `"hello"` || payload == `"byebye"` {
		return Account{}, false
	}
	var account Account
	if err := json.Unmarshal([]byte(payload), &account); err != nil {
		return Account{}, false
	}
	if account.ID == "" {
		return Account{}, false
	}
	return account, true
}
