// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keywrap encrypts and decrypts the signing key under a user
// passphrase, using Argon2id-then-secretbox, the way
// rclone-rclone/backend/crypt/cipher.go derives a key with a
// memory-hard KDF and feeds it straight into
// golang.org/x/crypto/nacl/secretbox.
package keywrap

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/CodeEspritLibre/songe/internal/memzero"
)

const (
	saltLen  = 16
	nonceLen = 24
	keyLen   = 32

	// Argon2id parameters. Every implementation MUST use exactly these
	// values or wrapped keys stop being portable across implementations.
	argonTime    = 5
	argonThreads = 1
	// The memory limit is specified in bytes (7_256_678);
	// golang.org/x/crypto/argon2 takes KiB. 7_256_678 is not an exact
	// multiple of 1024, so this is a floor division -- implementations
	// MUST reproduce the same floor to agree on the derived key.
	argonMemKiB = 7_256_678 / 1024

	// WrappedLen is the total size of a WrappedKey: salt || nonce ||
	// ciphertext, where ciphertext is 32 plaintext bytes plus the
	// 16-byte Poly1305 MAC.
	WrappedLen = saltLen + nonceLen + keyLen + secretbox.Overhead
)

// Wrap encrypts signingKey under passphrase, returning the 88-byte
// WrappedKey layout: salt(16) || nonce(24) || ct(48).
func Wrap(signingKey [32]byte, passphrase []byte) ([]byte, error) {
	var salt [saltLen]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, errors.Wrap(err, "keywrap: reading salt")
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errors.Wrap(err, "keywrap: reading nonce")
	}

	derived := deriveKey(passphrase, salt[:])
	defer memzero.Bytes(derived[:])

	out := make([]byte, 0, WrappedLen)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, signingKey[:], &nonce, &derived)
	return out, nil
}

// Unwrap decrypts a WrappedKey produced by Wrap. A wrong passphrase
// and a corrupted ciphertext are indistinguishable: both surface as
// ErrBadPassphrase.
func Unwrap(wrapped []byte, passphrase []byte) ([32]byte, error) {
	if len(wrapped) != WrappedLen {
		return [32]byte{}, errors.Wrapf(ErrBadKeyfile, "wrapped key is %d bytes, want %d", len(wrapped), WrappedLen)
	}
	salt := wrapped[:saltLen]
	nonce := wrapped[saltLen : saltLen+nonceLen]
	ct := wrapped[saltLen+nonceLen:]

	derived := deriveKey(passphrase, salt)
	defer memzero.Bytes(derived[:])

	var nonceArr [nonceLen]byte
	copy(nonceArr[:], nonce)

	opened, ok := secretbox.Open(nil, ct, &nonceArr, &derived)
	if !ok {
		return [32]byte{}, ErrBadPassphrase
	}
	defer memzero.Bytes(opened)

	var signingKey [32]byte
	copy(signingKey[:], opened)
	return signingKey, nil
}

func deriveKey(passphrase, salt []byte) [32]byte {
	var out [32]byte
	derived := argon2.IDKey(passphrase, salt, argonTime, uint32(argonMemKiB), argonThreads, keyLen)
	defer memzero.Bytes(derived)
	copy(out[:], derived)
	return out
}
