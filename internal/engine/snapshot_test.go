package engine

import (
	"testing"

	"github.com/jimber/tft-wallet/internal/escrow"
	"github.com/jimber/tft-wallet/internal/horizon"
)

func escrowBalance(id, code, amount string, tx *horizon.Transaction) *escrow.LockedBalance {
	return &escrow.LockedBalance{
		ID: id,
		Balance: horizon.Balance{
			AssetType: "credit_alphanum4",
			AssetCode: code,
			Amount:    amount,
		},
		UnlockTransaction: tx,
	}
}

func TestAggregateLockedBalances(t *testing.T) {
	tests := []struct {
		name    string
		records []*escrow.LockedBalance
		want    map[string]string
	}{
		{
			name:    "empty",
			records: nil,
			want:    map[string]string{},
		},
		{
			name: "single",
			records: []*escrow.LockedBalance{
				escrowBalance("a", "TFT", "10", nil),
			},
			want: map[string]string{"TFT": "10"},
		},
		{
			name: "sums per asset",
			records: []*escrow.LockedBalance{
				escrowBalance("a", "TFT", "10.5", nil),
				escrowBalance("b", "TFT", "0.5", nil),
				escrowBalance("c", "TFTA", "3", nil),
			},
			want: map[string]string{"TFT": "11", "TFTA": "3"},
		},
		{
			name: "malformed amount skipped",
			records: []*escrow.LockedBalance{
				escrowBalance("a", "TFT", "10", nil),
				escrowBalance("b", "TFT", "garbage", nil),
			},
			want: map[string]string{"TFT": "10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aggregateLockedBalances(tt.records)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d assets, want %d", len(got), len(tt.want))
			}
			for code, want := range tt.want {
				sum, ok := got[code]
				if !ok {
					t.Errorf("missing asset %s", code)
					continue
				}
				if sum.String() != want {
					t.Errorf("%s = %s, want %s", code, sum, want)
				}
			}
		})
	}
}

func TestSortLockedTransactions(t *testing.T) {
	late := escrowBalance("late", "TFT", "1", &horizon.Transaction{MinTime: 300})
	early := escrowBalance("early", "TFT", "1", &horizon.Transaction{MinTime: 100})
	mid := escrowBalance("mid", "TFT", "1", &horizon.Transaction{MinTime: 200})

	got := sortLockedTransactions([]*escrow.LockedBalance{late, early, mid})

	want := []string{"early", "mid", "late"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSortLockedTransactions_MissingUnlockKeepsOrder(t *testing.T) {
	a := escrowBalance("a", "TFT", "1", nil)
	b := escrowBalance("b", "TFT", "1", &horizon.Transaction{MinTime: 100})
	c := escrowBalance("c", "TFT", "1", nil)

	got := sortLockedTransactions([]*escrow.LockedBalance{a, b, c})

	// Records without an unlock transaction compare equal, so the stable
	// sort preserves their fetched order.
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSortLockedTransactions_DoesNotMutateInput(t *testing.T) {
	in := []*escrow.LockedBalance{
		escrowBalance("late", "TFT", "1", &horizon.Transaction{MinTime: 300}),
		escrowBalance("early", "TFT", "1", &horizon.Transaction{MinTime: 100}),
	}

	sortLockedTransactions(in)

	if in[0].ID != "late" || in[1].ID != "early" {
		t.Error("input slice order changed")
	}
}

func TestFilterBalances(t *testing.T) {
	account := &horizon.Account{
		ID: "GACC",
		Balances: []horizon.Balance{
			{AssetType: "native", Amount: "3"},
			{AssetType: "credit_alphanum4", AssetCode: "FREETFT", Amount: "2"},
			{AssetType: "credit_alphanum4", AssetCode: "TFT", Amount: "10"},
			{AssetType: "credit_alphanum4", AssetCode: "DOGE", Amount: "99"},
		},
	}

	got := filterBalances(account, []string{"TFT", "TFTA", "FREETFT"})

	// Supported assets only, in configured order; TFTA has no trust line
	// on this account and is simply absent.
	want := []string{"TFT", "FREETFT"}
	if len(got) != len(want) {
		t.Fatalf("got %d balances, want %d", len(got), len(want))
	}
	for i, code := range want {
		if got[i].AssetCode != code {
			t.Errorf("position %d = %s, want %s", i, got[i].AssetCode, code)
		}
	}
}
