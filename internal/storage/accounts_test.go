package storage

import (
	"errors"
	"testing"
)

func TestAccountStore_AddGetList(t *testing.T) {
	store := NewAccountStore(NewMemory(), "production")

	records := []AccountRecord{
		{Name: "savings", Index: 1, Position: 2, Tags: []string{"cold"}},
		{Name: "main", Index: 0, Position: 0},
		{Name: "trading", Index: 2, Position: 1, Converted: true},
	}
	for _, rec := range records {
		if err := store.Add(rec); err != nil {
			t.Fatalf("Add(%q) error: %v", rec.Name, err)
		}
	}

	got, err := store.Get("trading")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Index != 2 || !got.Converted {
		t.Errorf("Get(trading) = %+v", got)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	want := []string{"main", "trading", "savings"}
	if len(list) != len(want) {
		t.Fatalf("List() = %d records, want %d", len(list), len(want))
	}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("List()[%d] = %q, want %q (position order)", i, list[i].Name, name)
		}
	}
}

func TestAccountStore_DuplicateName(t *testing.T) {
	store := NewAccountStore(NewMemory(), "production")

	if err := store.Add(AccountRecord{Name: "main"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	err := store.Add(AccountRecord{Name: "main", Index: 5})
	if !errors.Is(err, ErrAccountExists) {
		t.Errorf("Add() duplicate err = %v, want ErrAccountExists", err)
	}
}

func TestAccountStore_EmptyName(t *testing.T) {
	store := NewAccountStore(NewMemory(), "production")
	if err := store.Add(AccountRecord{}); err == nil {
		t.Error("Add() with empty name should fail")
	}
}

func TestAccountStore_Update(t *testing.T) {
	store := NewAccountStore(NewMemory(), "production")
	store.Add(AccountRecord{Name: "main", Position: 0})

	if err := store.Update(AccountRecord{Name: "main", Position: 3, Tags: []string{"hot"}}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, _ := store.Get("main")
	if got.Position != 3 || len(got.Tags) != 1 {
		t.Errorf("updated record = %+v", got)
	}

	if err := store.Update(AccountRecord{Name: "ghost"}); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Update() missing err = %v, want ErrKeyNotFound", err)
	}
}

func TestAccountStore_Remove(t *testing.T) {
	store := NewAccountStore(NewMemory(), "production")
	store.Add(AccountRecord{Name: "main"})

	if err := store.Remove("main"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := store.Get("main"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() after Remove() err = %v, want ErrKeyNotFound", err)
	}

	// Removing again is a no-op.
	if err := store.Remove("main"); err != nil {
		t.Errorf("Remove() missing account error: %v", err)
	}
}

func TestAccountStore_NetworkIsolation(t *testing.T) {
	db := NewMemory()
	prod := NewAccountStore(db, "production")
	test := NewAccountStore(db, "testnet")

	prod.Add(AccountRecord{Name: "main", Index: 0})
	test.Add(AccountRecord{Name: "main", Index: 7})

	got, err := prod.Get("main")
	if err != nil {
		t.Fatalf("production Get() error: %v", err)
	}
	if got.Index != 0 {
		t.Errorf("production record index = %d, want 0", got.Index)
	}

	got, err = test.Get("main")
	if err != nil {
		t.Fatalf("testnet Get() error: %v", err)
	}
	if got.Index != 7 {
		t.Errorf("testnet record index = %d, want 7", got.Index)
	}

	list, _ := prod.List()
	if len(list) != 1 {
		t.Errorf("production List() = %d records, want 1", len(list))
	}
}

func TestAccountStore_NextIndex(t *testing.T) {
	store := NewAccountStore(NewMemory(), "production")

	next, err := store.NextIndex()
	if err != nil || next != 0 {
		t.Errorf("NextIndex() empty = %d, %v; want 0, nil", next, err)
	}

	store.Add(AccountRecord{Name: "a", Index: 0})
	store.Add(AccountRecord{Name: "c", Index: 2})

	next, err = store.NextIndex()
	if err != nil {
		t.Fatalf("NextIndex() error: %v", err)
	}
	if next != 1 {
		t.Errorf("NextIndex() = %d, want 1 (first gap)", next)
	}
}
