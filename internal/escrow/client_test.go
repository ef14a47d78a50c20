package escrow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jimber/tft-wallet/internal/wallet"
)

const testMnemonic = "illness spike retreat truth genius clock brain pass fit cave bargain toe"

func testKeyPair(t *testing.T) *wallet.KeyPair {
	t.Helper()
	kp, err := wallet.DeriveKeyPair(testMnemonic, 0)
	if err != nil {
		t.Fatalf("derive keypair: %v", err)
	}
	return kp
}

func TestGetLockedBalances(t *testing.T) {
	kp := testKeyPair(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/escrows/"+kp.Address() {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"id": "GESCROW1", "asset_code": "TFT", "amount": "100.5", "unlock_hash": "hash1"},
			{"id": "GESCROW2", "asset_code": "TFT", "amount": "50", "unlock_hash": ""}
		]`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	records, err := client.GetLockedBalances(context.Background(), kp)
	if err != nil {
		t.Fatalf("GetLockedBalances() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != "GESCROW1" || records[0].UnlockHash != "hash1" {
		t.Errorf("record[0] = %+v", records[0])
	}
	if records[0].Balance.Amount != "100.5" || records[0].Balance.AssetCode != "TFT" {
		t.Errorf("record[0] balance = %+v", records[0].Balance)
	}
	if records[1].UnlockHash != "" {
		t.Errorf("record[1] unlock hash = %q, want empty", records[1].UnlockHash)
	}
	if records[0].KeyPair != kp {
		t.Error("records must be stamped with the wallet keypair")
	}
}

func TestGetLockedBalances_NoneKnown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	records, err := client.GetLockedBalances(context.Background(), testKeyPair(t))
	if err != nil {
		t.Fatalf("GetLockedBalances() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestFetchUnlockTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/unlockhash/deadbeef" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"hash": "deadbeef", "envelope_xdr": "AAAA", "min_time": 1700000000}`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	tx, err := client.FetchUnlockTransaction(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("FetchUnlockTransaction() error: %v", err)
	}
	if tx.EnvelopeXDR != "AAAA" || tx.MinTime != 1700000000 {
		t.Errorf("tx = %+v", tx)
	}
}

func TestFetchUnlockTransaction_Missing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	if _, err := client.FetchUnlockTransaction(context.Background(), "nope"); err == nil {
		t.Error("FetchUnlockTransaction() should fail on 404")
	}
}

func TestTransferLockedTokens(t *testing.T) {
	kp := testKeyPair(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transfer" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["escrow_id"] != "GESCROW1" || req["amount"] != "100.5" {
			t.Errorf("request = %v", req)
		}
		if req["signature"] == "" {
			t.Error("signature missing")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	amount := decimal.RequireFromString("100.5")
	if err := client.TransferLockedTokens(context.Background(), kp, "GESCROW1", "TFT", amount); err != nil {
		t.Fatalf("TransferLockedTokens() error: %v", err)
	}
}

func TestTransferLockedTokens_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error": "escrow still locked"}`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	err := client.TransferLockedTokens(context.Background(), testKeyPair(t), "GESCROW1", "TFT", decimal.NewFromInt(1))
	if err == nil {
		t.Fatal("TransferLockedTokens() should fail")
	}
}
