package wallet

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// TFChain (Rivine) address derivation. Migration of pre-Stellar TFT moves
// funds from the TFChain address that belongs to the same seed phrase and
// account index, so the activation call needs it as the source.

// revineUnlockTypePubKey is the unlock-condition type byte for a
// single-signature public key.
const revineUnlockTypePubKey byte = 0x01

// revineAlgoSpecifier is the fixed-width algorithm specifier that prefixes
// an encoded public key on TFChain.
var revineAlgoSpecifier = [16]byte{'e', 'd', '2', '5', '5', '1', '9'}

// RevineAddressFromSeed derives the TFChain unlock hash for one account of
// a seed phrase. Deterministic, no I/O.
func RevineAddressFromSeed(mnemonic string, index uint32) (string, error) {
	entropy, err := SeedMaterial(mnemonic)
	if err != nil {
		return "", fmt.Errorf("revine address: %w", err)
	}

	// Rivine key seeds are blake2b(seed entropy || index).
	buf := make([]byte, len(entropy)+8)
	copy(buf, entropy)
	binary.LittleEndian.PutUint64(buf[len(entropy):], uint64(index))
	keySeed := blake2b.Sum256(buf)

	priv := ed25519.NewKeyFromSeed(keySeed[:])
	pub := priv.Public().(ed25519.PublicKey)

	// Unlock hash: blake2b over the algorithm-specified public key.
	enc := make([]byte, 0, len(revineAlgoSpecifier)+ed25519.PublicKeySize)
	enc = append(enc, revineAlgoSpecifier[:]...)
	enc = append(enc, pub...)
	hash := blake2b.Sum256(enc)

	// Checksum covers the unlock type and the hash.
	chkInput := make([]byte, 0, 1+len(hash))
	chkInput = append(chkInput, revineUnlockTypePubKey)
	chkInput = append(chkInput, hash[:]...)
	chk := blake2b.Sum256(chkInput)

	out := make([]byte, 0, 1+len(hash)+6)
	out = append(out, revineUnlockTypePubKey)
	out = append(out, hash[:]...)
	out = append(out, chk[:6]...)
	return hex.EncodeToString(out), nil
}
