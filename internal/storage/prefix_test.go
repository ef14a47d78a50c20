package storage

import (
	"errors"
	"fmt"
	"sort"
	"testing"
)

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	prod := NewPrefixDB(inner, []byte("production/"))
	test := NewPrefixDB(inner, []byte("testnet/"))

	if err := prod.Put([]byte("key"), []byte("prod")); err != nil {
		t.Fatal(err)
	}
	if err := test.Put([]byte("key"), []byte("test")); err != nil {
		t.Fatal(err)
	}

	got, err := prod.Get([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "prod" {
		t.Errorf("production Get = %q, want %q", got, "prod")
	}

	got, err = test.Get([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "test" {
		t.Errorf("testnet Get = %q, want %q", got, "test")
	}

	// A namespace cannot reach the other's raw key.
	if ok, _ := prod.Has([]byte("testnet/key")); ok {
		t.Error("production namespace sees testnet's raw key")
	}
}

func TestPrefixDB_DeleteRoundTrip(t *testing.T) {
	db := NewPrefixDB(NewMemory(), []byte("ns/"))

	db.Put([]byte("k"), []byte("v"))
	if err := db.Delete([]byte("k")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get([]byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after Delete err = %v, want ErrKeyNotFound", err)
	}
}

func TestPrefixDB_ForEachStripsNamespace(t *testing.T) {
	db := NewPrefixDB(NewMemory(), []byte("production/"))

	db.Put([]byte("account/a"), []byte("1"))
	db.Put([]byte("account/b"), []byte("2"))
	db.Put([]byte("settings"), []byte("3"))

	var keys []string
	err := db.ForEach([]byte("account/"), func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}

	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "account/a" || keys[1] != "account/b" {
		t.Errorf("ForEach keys = %v, want [account/a account/b]", keys)
	}
}

func TestPrefixDB_ForEachStopEarly(t *testing.T) {
	db := NewPrefixDB(NewMemory(), []byte("ns/"))
	for i := 0; i < 10; i++ {
		db.Put([]byte(fmt.Sprintf("k%d", i)), []byte("v"))
	}

	count := 0
	stopErr := errors.New("stop")
	err := db.ForEach(nil, func(_, _ []byte) error {
		count++
		if count >= 3 {
			return stopErr
		}
		return nil
	})
	if !errors.Is(err, stopErr) {
		t.Errorf("ForEach err = %v, want stopErr", err)
	}
	if count != 3 {
		t.Errorf("ForEach called %d times, want 3", count)
	}
}

func TestPrefixDB_DeleteAll(t *testing.T) {
	inner := NewMemory()
	prod := NewPrefixDB(inner, []byte("production/"))
	test := NewPrefixDB(inner, []byte("testnet/"))

	prod.Put([]byte("k1"), []byte("v1"))
	prod.Put([]byte("k2"), []byte("v2"))
	test.Put([]byte("k1"), []byte("other"))

	if err := prod.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}

	for _, k := range []string{"k1", "k2"} {
		if ok, _ := prod.Has([]byte(k)); ok {
			t.Errorf("production still has %q after DeleteAll", k)
		}
	}
	got, err := test.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("testnet Get after production DeleteAll: %v", err)
	}
	if string(got) != "other" {
		t.Errorf("testnet value = %q, want %q", got, "other")
	}

	// Empty namespace is a no-op.
	if err := NewPrefixDB(inner, []byte("empty/")).DeleteAll(); err != nil {
		t.Errorf("DeleteAll on empty namespace: %v", err)
	}
}
