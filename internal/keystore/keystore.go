// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keystore locates, reads, and writes the project's .songe.key
// file, and enforces that it stays readable only by its owner. It
// depends on internal/codec to decode the EncodedKey field but never
// touches passphrases or unwraps anything -- that is
// internal/keywrap's job, kept separate from on-disk key storage.
package keystore

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/CodeEspritLibre/songe/internal/atomicfile"
	"github.com/CodeEspritLibre/songe/internal/config"
)

const ownerReadWrite = 0o600

// KeyStore resolves and persists the key file for a single project
// directory.
type KeyStore struct {
	cfg config.Config
}

// New returns a KeyStore bound to cfg.
func New(cfg config.Config) *KeyStore {
	return &KeyStore{cfg: cfg}
}

// ResolvePath implements the lookup order: the project-local file
// first, then a shared SONGE_HOME directory, then $HOME, falling back
// to the project-local path for write operations if nothing else was
// found.
func (ks *KeyStore) ResolvePath(forWrite bool) (string, error) {
	local := filepath.Join(ks.cfg.ProjectDir, config.KeyFileName)
	if fileExists(local) {
		return local, nil
	}
	if home := ks.cfg.SongeHome(); home != "" && isDir(home) {
		return filepath.Join(home, config.KeyFileName), nil
	}
	if home := ks.cfg.Home(); home != "" {
		p := filepath.Join(home, config.KeyFileName)
		if fileExists(p) {
			return p, nil
		}
	}
	if forWrite {
		return local, nil
	}
	return "", errors.Wrap(ErrBadKeyfile, "no key file found")
}

// Load resolves and parses the key file, returning the still-wrapped
// signing key bytes and the verify key the file declares. Callers MUST
// unwrap the key and compare the resulting verify key against the one
// returned here; Load itself has no passphrase to do that with.
func (ks *KeyStore) Load() (wrapped []byte, verifyKey [32]byte, err error) {
	path, err := ks.ResolvePath(false)
	if err != nil {
		return nil, [32]byte{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, [32]byte{}, errors.Wrap(ErrBadKeyfile, err.Error())
	}
	return decodeKeyFile(raw)
}

// Store writes the wrapped signing key and verify key to the resolved
// path with owner-only permissions, and invalidates any trust-store
// signature in the same directory -- it was signed by the identity
// Store is now replacing.
func (ks *KeyStore) Store(wrapped []byte, verifyKey [32]byte) error {
	path, err := ks.ResolvePath(true)
	if err != nil {
		return err
	}
	out := encodeKeyFile(wrapped, verifyKey)
	if err := atomicfile.Write(path, out, ownerReadWrite); err != nil {
		return errors.Wrap(err, "keystore: writing key file")
	}

	sigPath := filepath.Join(filepath.Dir(path), config.TrustSigFileName)
	if err := os.Remove(sigPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "keystore: invalidating stale trust signature")
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
