// Package strkey implements Stellar's strkey encoding for ed25519 public
// keys ("G..." account IDs) and secret seeds ("S...").
package strkey

import (
	"encoding/base32"
	"fmt"
)

// Version bytes per the Stellar strkey format. The high five bits select
// the leading character of the encoded string.
const (
	VersionAccountID byte = 6 << 3  // 'G'
	VersionSeed      byte = 18 << 3 // 'S'
)

// ed25519 keys and seeds are always 32 bytes of payload.
const payloadSize = 32

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode encodes 32 payload bytes under the given version byte:
// base32(version || payload || crc16-le).
func Encode(version byte, payload []byte) (string, error) {
	if len(payload) != payloadSize {
		return "", fmt.Errorf("strkey: payload must be %d bytes, got %d", payloadSize, len(payload))
	}
	raw := make([]byte, 0, 1+payloadSize+2)
	raw = append(raw, version)
	raw = append(raw, payload...)
	chk := checksum(raw)
	raw = append(raw, byte(chk), byte(chk>>8))
	return encoding.EncodeToString(raw), nil
}

// Decode decodes a strkey string, verifying the checksum and that the
// version byte matches the expected one.
func Decode(version byte, s string) ([]byte, error) {
	raw, err := encoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("strkey: decode base32: %w", err)
	}
	if len(raw) != 1+payloadSize+2 {
		return nil, fmt.Errorf("strkey: invalid length %d", len(raw))
	}
	body := raw[:len(raw)-2]
	chk := checksum(body)
	if raw[len(raw)-2] != byte(chk) || raw[len(raw)-1] != byte(chk>>8) {
		return nil, fmt.Errorf("strkey: checksum mismatch")
	}
	if body[0] != version {
		return nil, fmt.Errorf("strkey: version byte 0x%02x, want 0x%02x", body[0], version)
	}
	out := make([]byte, payloadSize)
	copy(out, body[1:])
	return out, nil
}

// EncodeAccountID encodes an ed25519 public key as a "G..." account ID.
func EncodeAccountID(pub []byte) (string, error) {
	return Encode(VersionAccountID, pub)
}

// DecodeAccountID decodes a "G..." account ID into public key bytes.
func DecodeAccountID(s string) ([]byte, error) {
	return Decode(VersionAccountID, s)
}

// EncodeSeed encodes a 32-byte ed25519 seed as an "S..." secret.
func EncodeSeed(seed []byte) (string, error) {
	return Encode(VersionSeed, seed)
}

// DecodeSeed decodes an "S..." secret into raw seed bytes.
func DecodeSeed(s string) ([]byte, error) {
	return Decode(VersionSeed, s)
}

// checksum computes CRC16-XModem (poly 0x1021, init 0) over data.
// Stellar appends it little-endian.
func checksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
