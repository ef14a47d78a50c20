package horizon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testAccountID = "GDRXE2BQUC3AZNPVFSCEZ76NJ3WWL25FYFK6RGZGIEKWE4SOOHSUJUJ6"

func TestLoadAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/"+testAccountID {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprintf(w, `{
			"id": %q,
			"sequence": "123456",
			"balances": [
				{"asset_type": "credit_alphanum4", "asset_code": "TFT", "asset_issuer": "GISSUER", "balance": "10.0000000"},
				{"asset_type": "native", "balance": "2.5000000"}
			]
		}`, testAccountID)
	}))
	defer srv.Close()

	client := New(srv.URL)
	account, err := client.LoadAccount(context.Background(), testAccountID)
	if err != nil {
		t.Fatalf("LoadAccount() error: %v", err)
	}
	if account.ID != testAccountID {
		t.Errorf("ID = %s", account.ID)
	}
	if len(account.Balances) != 2 {
		t.Fatalf("balances = %d, want 2", len(account.Balances))
	}

	b, ok := account.BalanceFor("TFT")
	if !ok {
		t.Fatal("BalanceFor(TFT) not found")
	}
	if b.Amount != "10.0000000" {
		t.Errorf("TFT amount = %s", b.Amount)
	}
	if _, ok := account.BalanceFor("BTC"); ok {
		t.Error("BalanceFor(BTC) should not be found")
	}
}

func TestLoadAccount_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status": 404, "title": "Resource Missing"}`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.LoadAccount(context.Background(), testAccountID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadAccount_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"status": 500, "title": "Internal Server Error", "detail": "boom"}`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.LoadAccount(context.Background(), testAccountID)
	if err == nil {
		t.Fatal("LoadAccount() should fail")
	}
	var herr *Error
	if !errors.As(err, &herr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if herr.Status != 500 || herr.Title != "Internal Server Error" {
		t.Errorf("herr = %+v", herr)
	}
}

func TestSubmitTransaction(t *testing.T) {
	var gotTx string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotTx = r.PostForm.Get("tx")
		fmt.Fprint(w, `{"hash": "abc"}`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	if err := client.SubmitTransaction(context.Background(), "AAAA-envelope"); err != nil {
		t.Fatalf("SubmitTransaction() error: %v", err)
	}
	if gotTx != "AAAA-envelope" {
		t.Errorf("tx = %q", gotTx)
	}
}

func TestSubmitTransaction_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status": 400, "title": "Transaction Failed", "detail": "tx_bad_seq"}`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	err := client.SubmitTransaction(context.Background(), "AAAA")
	var herr *Error
	if !errors.As(err, &herr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if herr.Detail != "tx_bad_seq" {
		t.Errorf("detail = %q", herr.Detail)
	}
}

func TestStreamAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %s", r.Header.Get("Accept"))
		}
		if r.URL.Query().Get("cursor") != CursorNow {
			t.Errorf("cursor = %s", r.URL.Query().Get("cursor"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: \"hello\"\n\n")
		fmt.Fprintf(w, "data: {\"id\": %q, \"balances\": [{\"asset_code\": \"TFT\", \"balance\": \"5.0\"}]}\n\n", testAccountID)
		fmt.Fprintf(w, "data: {\"id\": %q, \"balances\": [{\"asset_code\": \"TFT\", \"balance\": \"6.0\"}]}\n\n", testAccountID)
	}))
	defer srv.Close()

	var got []Account
	client := New(srv.URL)
	err := client.StreamAccount(context.Background(), testAccountID, CursorNow, func(a Account) {
		got = append(got, a)
	})
	// The server closes after three events, which the client reports.
	if err == nil {
		t.Fatal("StreamAccount() should report server close")
	}
	if len(got) != 2 {
		t.Fatalf("messages = %d, want 2 (hello filtered)", len(got))
	}
	b, _ := got[1].BalanceFor("TFT")
	if b.Amount != "6.0" {
		t.Errorf("second update TFT = %s", b.Amount)
	}
}

func TestStreamAccount_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: \"hello\"\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	done := make(chan error, 1)
	client := New(srv.URL)
	go func() {
		done <- client.StreamAccount(ctx, testAccountID, CursorNow, func(Account) {})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("cancelled stream returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}
