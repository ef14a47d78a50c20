package wallet

import (
	"crypto/ed25519"
	"fmt"

	"github.com/jimber/tft-wallet/pkg/strkey"
)

// KeyPair holds one derived account's ed25519 key material.
// It must never be logged or serialized outside the secure storage
// boundary.
type KeyPair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// KeyPairFromEntropy builds a keypair from 32 bytes of derived entropy
// (the ed25519 seed).
func KeyPairFromEntropy(entropy []byte) (*KeyPair, error) {
	if len(entropy) != ed25519.SeedSize {
		return nil, fmt.Errorf("entropy must be %d bytes, got %d", ed25519.SeedSize, len(entropy))
	}
	priv := ed25519.NewKeyFromSeed(entropy)
	return &KeyPair{
		pub:  priv.Public().(ed25519.PublicKey),
		priv: priv,
	}, nil
}

// DeriveKeyPair derives the keypair for one account of a seed phrase.
func DeriveKeyPair(mnemonic string, index uint32) (*KeyPair, error) {
	entropy, err := WalletEntropy(mnemonic, index)
	if err != nil {
		return nil, err
	}
	return KeyPairFromEntropy(entropy)
}

// Address returns the strkey-encoded public key (the "G..." account ID).
func (kp *KeyPair) Address() string {
	s, err := strkey.EncodeAccountID(kp.pub)
	if err != nil {
		// 32-byte ed25519 keys always encode.
		panic(fmt.Sprintf("encode account ID: %v", err))
	}
	return s
}

// Seed returns the strkey-encoded secret seed (the "S..." string).
func (kp *KeyPair) Seed() string {
	s, err := strkey.EncodeSeed(kp.priv.Seed())
	if err != nil {
		panic(fmt.Sprintf("encode seed: %v", err))
	}
	return s
}

// PublicKey returns the raw 32-byte ed25519 public key.
func (kp *KeyPair) PublicKey() []byte {
	out := make([]byte, len(kp.pub))
	copy(out, kp.pub)
	return out
}

// Sign signs msg with the account's private key.
func (kp *KeyPair) Sign(msg []byte) []byte {
	return ed25519.Sign(kp.priv, msg)
}

// Verify reports whether sig is a valid signature of msg by this keypair.
func (kp *KeyPair) Verify(msg, sig []byte) bool {
	return ed25519.Verify(kp.pub, msg, sig)
}
