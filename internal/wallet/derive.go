package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// SEP-0005 derivation path constants.
// Full path: m/44'/148'/index'
const (
	// PurposeBIP44 is the BIP-44 purpose field.
	PurposeBIP44 = 44

	// CoinTypeStellar is Stellar's registered SLIP-0044 coin type.
	CoinTypeStellar = 148
)

// firstHardened marks the start of the hardened index range.
// SLIP-0010 ed25519 derivation only defines hardened children.
const firstHardened uint32 = 1 << 31

// slip10Key is the master-key HMAC key from SLIP-0010 for curve ed25519.
var slip10Key = []byte("ed25519 seed")

// slip10Node is one node of a SLIP-0010 ed25519 derivation chain.
type slip10Node struct {
	key   [32]byte
	chain [32]byte
}

// masterNode derives the root node from a BIP-39 seed.
func masterNode(seed []byte) slip10Node {
	mac := hmac.New(sha512.New, slip10Key)
	mac.Write(seed)
	return splitDigest(mac.Sum(nil))
}

// childHardened derives the hardened child at the given (unhardened) index.
func (n slip10Node) childHardened(index uint32) slip10Node {
	var data [1 + 32 + 4]byte
	copy(data[1:], n.key[:])
	binary.BigEndian.PutUint32(data[33:], firstHardened+index)

	mac := hmac.New(sha512.New, n.chain[:])
	mac.Write(data[:])
	return splitDigest(mac.Sum(nil))
}

func splitDigest(sum []byte) slip10Node {
	var node slip10Node
	copy(node.key[:], sum[:32])
	copy(node.chain[:], sum[32:])
	return node
}

// WalletEntropy derives the 32 bytes of key entropy for one account:
// BIP-39 seed from the phrase, then SLIP-0010 along m/44'/148'/index'.
// Pure and deterministic; identical inputs always yield identical output.
func WalletEntropy(mnemonic string, index uint32) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}

	node := masterNode(seed).
		childHardened(PurposeBIP44).
		childHardened(CoinTypeStellar).
		childHardened(index)

	out := make([]byte, 32)
	copy(out, node.key[:])
	return out, nil
}
