// Package wallet implements deterministic Stellar key derivation from
// BIP-39 seed phrases (SEP-0005: SLIP-0010 over ed25519 along
// m/44'/148'/index').
package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits is the entropy size for 24-word mnemonics.
const MnemonicEntropyBits = 256

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks that a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) error {
	if _, err := bip39.EntropyFromMnemonic(mnemonic); err != nil {
		return fmt.Errorf("invalid mnemonic: %w", err)
	}
	return nil
}

// SeedMaterial returns the raw BIP-39 entropy bytes behind a mnemonic.
// This is what account snapshots carry as seed material; it never leaves
// the process, it is only held for local re-derivation.
func SeedMaterial(mnemonic string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("entropy from mnemonic: %w", err)
	}
	return entropy, nil
}
