package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var accountPrefix = []byte("account/")

// ErrAccountExists is returned by Add when the name is already taken.
var ErrAccountExists = errors.New("account name already in use")

// AccountRecord is the persisted metadata for one wallet account. The
// seed phrase and derived keys deliberately never appear here: the
// record only carries what is needed to re-derive and display the
// account next session.
type AccountRecord struct {
	Name      string   `json:"name"`
	Tags      []string `json:"tags,omitempty"`
	Index     uint32   `json:"index"`
	Position  int      `json:"position"`
	Converted bool     `json:"converted,omitempty"`
}

// AccountStore persists account metadata for one network.
type AccountStore struct {
	db *PrefixDB
}

// NewAccountStore creates a store namespaced to the given network, so
// production and testnet accounts never mix.
func NewAccountStore(db DB, network string) *AccountStore {
	return &AccountStore{
		db: NewPrefixDB(db, []byte(network+"/")),
	}
}

func accountKey(name string) []byte {
	return append(append([]byte{}, accountPrefix...), name...)
}

// Add persists a new account record. The name must be unused.
func (s *AccountStore) Add(rec AccountRecord) error {
	if rec.Name == "" {
		return errors.New("account name must not be empty")
	}
	exists, err := s.db.Has(accountKey(rec.Name))
	if err != nil {
		return fmt.Errorf("check account %q: %w", rec.Name, err)
	}
	if exists {
		return fmt.Errorf("%w: %q", ErrAccountExists, rec.Name)
	}
	return s.put(rec)
}

// Update overwrites an existing account record.
func (s *AccountStore) Update(rec AccountRecord) error {
	exists, err := s.db.Has(accountKey(rec.Name))
	if err != nil {
		return fmt.Errorf("check account %q: %w", rec.Name, err)
	}
	if !exists {
		return fmt.Errorf("account %q: %w", rec.Name, ErrKeyNotFound)
	}
	return s.put(rec)
}

func (s *AccountStore) put(rec AccountRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode account %q: %w", rec.Name, err)
	}
	if err := s.db.Put(accountKey(rec.Name), data); err != nil {
		return fmt.Errorf("store account %q: %w", rec.Name, err)
	}
	return nil
}

// Get loads one account record by name.
func (s *AccountStore) Get(name string) (AccountRecord, error) {
	data, err := s.db.Get(accountKey(name))
	if err != nil {
		return AccountRecord{}, fmt.Errorf("load account %q: %w", name, err)
	}
	var rec AccountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return AccountRecord{}, fmt.Errorf("decode account %q: %w", name, err)
	}
	return rec, nil
}

// List returns all account records ordered by display position, ties
// broken by name.
func (s *AccountStore) List() ([]AccountRecord, error) {
	var records []AccountRecord
	err := s.db.ForEach(accountPrefix, func(_, value []byte) error {
		var rec AccountRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("decode account record: %w", err)
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Position != records[j].Position {
			return records[i].Position < records[j].Position
		}
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// Remove deletes an account record. Removing a missing account is not
// an error.
func (s *AccountStore) Remove(name string) error {
	return s.db.Delete(accountKey(name))
}

// NextIndex returns the first derivation index not used by any stored
// account.
func (s *AccountStore) NextIndex() (uint32, error) {
	records, err := s.List()
	if err != nil {
		return 0, err
	}
	used := make(map[uint32]bool, len(records))
	for _, rec := range records {
		used[rec.Index] = true
	}
	var next uint32
	for used[next] {
		next++
	}
	return next, nil
}
