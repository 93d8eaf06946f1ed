// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec implements the textual representations used
// throughout songe: strict Base64 for opaque byte blobs, and a
// Base32-with-checksum encoding for the 32-byte Ed25519 keys that a
// human might transcribe by hand.
package codec

import (
	"encoding/base32"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// Tag bytes chosen so the RFC 4648 Base32 alphabet's first output
// character is structural, not decorative: decoders reject strings
// that don't start with the expected letter.
const (
	tagVerifyKey byte = 0x78 // Base32 output begins with 'P'
	tagSigningKey byte = 0x50 // Base32 output begins with 'K'

	rawKeyLen = 32
)

// EncodeBytes returns the strict standard Base64 encoding of b.
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBytes decodes s as strict standard Base64. Any deviation from
// the standard alphabet, including missing padding, is ErrBadEncoding.
func DecodeBytes(s string) ([]byte, error) {
	// encoding/base64 silently skips CR and LF; reject them explicitly.
	if strings.ContainsAny(s, "\r\n") {
		return nil, errors.Wrap(ErrBadEncoding, "line break in Base64 input")
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrBadEncoding, err.Error())
	}
	return b, nil
}

// EncodeVerifyKey encodes a 32-byte Ed25519 public key. The result
// always begins with 'P'.
func EncodeVerifyKey(raw [32]byte) string {
	return encodeTagged(tagVerifyKey, raw)
}

// EncodeSigningKey tags raw with the signing-key tag. The result
// always begins with 'K'.
//
// Most callers pass a genuine signing-key seed here. internal/keystore
// is the one exception: the on-disk key file stores its *verify* key
// under this same tag, to match the reference format byte-for-byte,
// and calls this function with a verify key to produce that quirk
// deliberately.
func EncodeSigningKey(raw [32]byte) string {
	return encodeTagged(tagSigningKey, raw)
}

func encodeTagged(tag byte, raw [32]byte) string {
	body := make([]byte, 0, 1+rawKeyLen+2)
	body = append(body, tag)
	body = append(body, raw[:]...)
	sum := crc16(body)
	body = append(body, byte(sum), byte(sum>>8))
	return base32.StdEncoding.EncodeToString(body)
}

// DecodedKey is the result of decoding any tagged EncodedKey string.
type DecodedKey struct {
	Tag byte
	Raw [32]byte
}

// DecodeTagged Base32-decodes s, verifies its CRC-16, and returns the
// tag byte and raw 32 bytes without asserting which tag was expected.
// Most callers want DecodeVerifyKey or DecodeSigningTagged instead.
func DecodeTagged(s string) (DecodedKey, error) {
	body, err := base32.StdEncoding.DecodeString(s)
	if err != nil {
		return DecodedKey{}, errors.Wrap(ErrBadEncoding, err.Error())
	}
	if len(body) != 1+rawKeyLen+2 {
		return DecodedKey{}, errors.Wrapf(ErrBadEncoding, "decoded length %d, want %d", len(body), 1+rawKeyLen+2)
	}
	payload, wantCRC := body[:len(body)-2], body[len(body)-2:]
	got := crc16(payload)
	if byte(got) != wantCRC[0] || byte(got>>8) != wantCRC[1] {
		return DecodedKey{}, ErrBadChecksum
	}
	var dk DecodedKey
	dk.Tag = payload[0]
	copy(dk.Raw[:], payload[1:])
	return dk, nil
}

// DecodeVerifyKey decodes s, requiring the verify-key tag ('P'-prefixed).
func DecodeVerifyKey(s string) ([32]byte, error) {
	dk, err := DecodeTagged(s)
	if err != nil {
		return [32]byte{}, err
	}
	if dk.Tag != tagVerifyKey {
		return [32]byte{}, errors.Wrapf(ErrBadEncoding, "unexpected tag 0x%02x, want verify-key tag", dk.Tag)
	}
	return dk.Raw, nil
}

// DecodeSigningTagged decodes s, requiring the signing-key tag
// ('K'-prefixed), regardless of whether the raw 32 bytes underneath
// are actually a signing seed or a verify key. The on-disk key file
// stores its declared verify key with this tag, which internal/keystore
// decodes here; internal/facade's Import uses it for a genuine signing
// key.
func DecodeSigningTagged(s string) ([32]byte, error) {
	dk, err := DecodeTagged(s)
	if err != nil {
		return [32]byte{}, err
	}
	if dk.Tag != tagSigningKey {
		return [32]byte{}, errors.Wrapf(ErrBadEncoding, "unexpected tag 0x%02x, want signing-key tag", dk.Tag)
	}
	return dk.Raw, nil
}
