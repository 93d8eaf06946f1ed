// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package facade exposes every operation a CLI collaborator needs as
// a single method call, composing internal/keystore, internal/keywrap,
// internal/truststore, and internal/signengine, but without any flag
// parsing or passphrase prompting of its own -- both are supplied by
// the caller.
package facade

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/CodeEspritLibre/songe/internal/atomicfile"
	"github.com/CodeEspritLibre/songe/internal/codec"
	"github.com/CodeEspritLibre/songe/internal/config"
	"github.com/CodeEspritLibre/songe/internal/keystore"
	"github.com/CodeEspritLibre/songe/internal/keywrap"
	"github.com/CodeEspritLibre/songe/internal/memzero"
	"github.com/CodeEspritLibre/songe/internal/passphrase"
	"github.com/CodeEspritLibre/songe/internal/sigrecord"
	"github.com/CodeEspritLibre/songe/internal/signengine"
	"github.com/CodeEspritLibre/songe/internal/truststore"
)

// Facade ties the system's components together for a single project
// directory.
type Facade struct {
	cfg    Config
	keys   *keystore.KeyStore
	trust  *truststore.TrustStore
	engine *signengine.Engine
}

// New returns a Facade bound to cfg.
func New(cfg Config) *Facade {
	return &Facade{
		cfg:    cfg,
		keys:   keystore.New(cfg.Core),
		trust:  truststore.New(cfg.Core.ProjectDir),
		engine: signengine.New(),
	}
}

func deriveVerifyKey(seed [32]byte) [32]byte {
	priv := ed25519.NewKeyFromSeed(seed[:])
	var vk [32]byte
	copy(vk[:], priv.Public().(ed25519.PublicKey))
	return vk
}

// Generate creates a fresh signing key, wraps it under a passphrase
// drawn from src, and stores it. It returns the new project's verify
// key, Base32-encoded.
func (f *Facade) Generate(src passphrase.Source) (string, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return "", errors.Wrap(err, "facade: generating signing key")
	}
	defer memzero.Bytes(seed[:])
	return f.storeNewKey(seed, src)
}

// Import derives a key pair from a caller-supplied signing key
// (Base32, K-tagged, as produced by ShowSigningKey) and stores it
// under a freshly chosen passphrase, the same way Generate does.
func (f *Facade) Import(encodedSigningKey string, src passphrase.Source) (string, error) {
	seed, err := codec.DecodeSigningTagged(encodedSigningKey)
	if err != nil {
		return "", err
	}
	defer memzero.Bytes(seed[:])
	return f.storeNewKey(seed, src)
}

func (f *Facade) storeNewKey(seed [32]byte, src passphrase.Source) (string, error) {
	pass, err := src.Passphrase("passphrase: ")
	if err != nil {
		return "", err
	}
	defer memzero.Bytes(pass)

	verifyKey := deriveVerifyKey(seed)
	wrapped, err := keywrap.Wrap(seed, pass)
	if err != nil {
		return "", err
	}
	if err := f.keys.Store(wrapped, verifyKey); err != nil {
		return "", err
	}
	return codec.EncodeVerifyKey(verifyKey), nil
}

// loadAndUnwrap loads the key file and unwraps the signing key under
// the passphrase src supplies, verifying the unwrapped key actually
// derives the file's declared verify key.
func (f *Facade) loadAndUnwrap(src passphrase.Source) (seed, verifyKey [32]byte, err error) {
	wrapped, declaredVerifyKey, err := f.keys.Load()
	if err != nil {
		return [32]byte{}, [32]byte{}, err
	}
	pass, err := src.Passphrase("passphrase: ")
	if err != nil {
		return [32]byte{}, [32]byte{}, err
	}
	defer memzero.Bytes(pass)

	seed, err = keywrap.Unwrap(wrapped, pass)
	if err != nil {
		return [32]byte{}, [32]byte{}, err
	}
	if deriveVerifyKey(seed) != declaredVerifyKey {
		memzero.Bytes(seed[:])
		return [32]byte{}, [32]byte{}, ErrVerifyKeyMismatch
	}
	return seed, declaredVerifyKey, nil
}

// ChangePassphrase unwraps the signing key under the old passphrase
// and re-stores it wrapped under the new one.
func (f *Facade) ChangePassphrase(oldSrc, newSrc passphrase.Source) error {
	seed, verifyKey, err := f.loadAndUnwrap(oldSrc)
	if err != nil {
		return err
	}
	defer memzero.Bytes(seed[:])

	pass, err := newSrc.Passphrase("new passphrase: ")
	if err != nil {
		return err
	}
	defer memzero.Bytes(pass)

	wrapped, err := keywrap.Wrap(seed, pass)
	if err != nil {
		return err
	}
	return f.keys.Store(wrapped, verifyKey)
}

// ShowSigningKey unwraps and returns the project's signing key,
// Base32-encoded (K-tagged).
func (f *Facade) ShowSigningKey(src passphrase.Source) (string, error) {
	seed, _, err := f.loadAndUnwrap(src)
	if err != nil {
		return "", err
	}
	defer memzero.Bytes(seed[:])
	return codec.EncodeSigningKey(seed), nil
}

// ShowVerifyKey returns the project's declared verify key,
// Base32-encoded (P-tagged). Unlike ShowSigningKey this needs no
// passphrase: the key file states the verify key in the clear.
func (f *Facade) ShowVerifyKey() (string, error) {
	_, verifyKey, err := f.keys.Load()
	if err != nil {
		return "", err
	}
	return codec.EncodeVerifyKey(verifyKey), nil
}

// Sign produces filePath's .sgsig record and writes it alongside
// filePath.
func (f *Facade) Sign(filePath string, opts signengine.SignOptions, src passphrase.Source) error {
	seed, verifyKey, err := f.loadAndUnwrap(src)
	if err != nil {
		return err
	}
	defer memzero.Bytes(seed[:])

	rec, err := f.engine.Sign(filePath, opts, seed, verifyKey)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := sigrecord.Encode(&buf, rec, "verify with "+codec.EncodeVerifyKey(verifyKey)); err != nil {
		return err
	}
	return atomicfile.Write(sigPathFor(filePath), buf.Bytes(), 0o644)
}

// Verify reads filePath's .sgsig record and reports its verdict. It
// looks up a local verify key (if one is configured for this project)
// to decide trust; the absence of a usable key file is not an error
// here, it just caps the verdict at GoodUntrusted.
func (f *Facade) Verify(filePath string) (signengine.VerifyResult, error) {
	sigBytes, err := os.ReadFile(sigPathFor(filePath))
	if err != nil {
		return signengine.VerifyResult{}, errors.Wrap(err, "facade: reading signature file")
	}

	var trustVerifyKey *[32]byte
	if _, declaredVerifyKey, err := f.keys.Load(); err == nil {
		trustVerifyKey = &declaredVerifyKey
	}

	return f.engine.Verify(filePath, sigBytes, f.trust, trustVerifyKey)
}

func sigPathFor(filePath string) string {
	return filePath + config.SigExt
}

// TrustListResult is what TrustList returns.
type TrustListResult struct {
	Keys     []string
	Unsigned bool
}

// TrustList returns the project's trusted verify keys, optionally
// filtered to those containing substring.
func (f *Facade) TrustList(substring string) (TrustListResult, error) {
	_, verifyKey, err := f.keys.Load()
	if err != nil {
		return TrustListResult{}, err
	}
	res, err := f.trust.Load(verifyKey)
	if err != nil {
		return TrustListResult{}, err
	}
	if substring == "" {
		return TrustListResult{Keys: res.Keys, Unsigned: res.Unsigned}, nil
	}
	var filtered []string
	for _, k := range res.Keys {
		if strings.Contains(k, substring) {
			filtered = append(filtered, k)
		}
	}
	return TrustListResult{Keys: filtered, Unsigned: res.Unsigned}, nil
}

// TrustAdd inserts key into the trust list, re-signing it with the
// project's own signing key.
func (f *Facade) TrustAdd(key string, src passphrase.Source) error {
	seed, _, err := f.loadAndUnwrap(src)
	if err != nil {
		return err
	}
	defer memzero.Bytes(seed[:])
	return f.trust.Add(key, seed)
}

// TrustRemove deletes an entry selected by literal key text or
// 1-based index, re-signing the remainder.
func (f *Facade) TrustRemove(selector string, src passphrase.Source) error {
	seed, _, err := f.loadAndUnwrap(src)
	if err != nil {
		return err
	}
	defer memzero.Bytes(seed[:])
	return f.trust.Remove(selector, seed)
}
