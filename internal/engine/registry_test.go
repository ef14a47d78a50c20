package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMemoryRegistry_PutAndAccount(t *testing.T) {
	r := NewMemoryRegistry()

	snap := &AccountSnapshot{ID: "GACC"}
	r.Put(snap, nil)

	got, ok := r.Account("GACC")
	if !ok || got != snap {
		t.Error("registered snapshot not returned")
	}
	if _, ok := r.Account("GOTHER"); ok {
		t.Error("unknown id should not resolve")
	}
	if len(r.Accounts()) != 1 {
		t.Errorf("Accounts() = %d entries, want 1", len(r.Accounts()))
	}
}

func TestMemoryRegistry_ReplaceStopsPrevious(t *testing.T) {
	r := NewMemoryRegistry()

	stopped := 0
	r.Put(&AccountSnapshot{ID: "GACC"}, func() { stopped++ })

	replacement := &AccountSnapshot{ID: "GACC"}
	r.Put(replacement, nil)

	if stopped != 1 {
		t.Errorf("previous entry stopped %d times, want 1", stopped)
	}
	got, _ := r.Account("GACC")
	if got != replacement {
		t.Error("replacement not registered")
	}
}

func TestMemoryRegistry_RemoveStopsTasks(t *testing.T) {
	r := NewMemoryRegistry()

	stopped := 0
	r.Put(&AccountSnapshot{ID: "GACC"}, func() { stopped++ })

	r.Remove("GACC")
	if stopped != 1 {
		t.Errorf("stopped %d times, want 1", stopped)
	}
	if _, ok := r.Account("GACC"); ok {
		t.Error("removed account still resolvable")
	}

	// Removing again is a no-op.
	r.Remove("GACC")
	if stopped != 1 {
		t.Errorf("stopped %d times after double remove, want 1", stopped)
	}
}

func TestMemoryRegistry_SetVestedBalance(t *testing.T) {
	r := NewMemoryRegistry()
	r.Put(&AccountSnapshot{ID: "GACC"}, nil)

	if !r.SetVestedBalance("GACC", decimal.RequireFromString("12.5")) {
		t.Fatal("update for registered account reported dropped")
	}
	snap, _ := r.Account("GACC")
	if snap.VestedBalance.String() != "12.5" {
		t.Errorf("vested = %s, want 12.5", snap.VestedBalance)
	}

	if r.SetVestedBalance("GOTHER", decimal.New(1, 0)) {
		t.Error("update for unknown account must report dropped")
	}
}
