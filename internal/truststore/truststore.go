// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package truststore manages the project's sorted, deduplicated list
// of trusted verify keys and its detached signature. It depends on a
// signing key seed supplied by the caller for Save/Add/Remove --
// obtaining that seed (including any passphrase prompt) is
// internal/keystore and internal/keywrap's job, not this package's:
// truststore never prompts for anything itself.
package truststore

import (
	"bytes"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/CodeEspritLibre/songe/internal/atomicfile"
	"github.com/CodeEspritLibre/songe/internal/codec"
	"github.com/CodeEspritLibre/songe/internal/config"
)

const trustFilePerm = 0o600

// TrustStore operates on the .songe.trust / .songe.trust.sgsig pair in
// a single directory.
type TrustStore struct {
	dir string
}

// New returns a TrustStore rooted at dir, the resolved project
// directory.
func New(dir string) *TrustStore {
	return &TrustStore{dir: dir}
}

func (ts *TrustStore) trustPath() string {
	return filepath.Join(ts.dir, config.TrustFileName)
}

func (ts *TrustStore) sigPath() string {
	return filepath.Join(ts.dir, config.TrustSigFileName)
}

// trustSigYAML is the sibling signature file's entire structure: it
// contains only a "signature" field, no other metadata.
type trustSigYAML struct {
	Signature string `yaml:"signature"`
}

// LoadResult is what Load returns: the normalized key list, and
// whether the signature sibling was absent. Rendering the actual
// warning for an unsigned trust file is the caller's diagnostic
// channel, not this package's concern.
type LoadResult struct {
	Keys     []string
	Unsigned bool
}

// Load reads the trust file and verifies it against verifyKey. Pass
// the project's declared verify key for the default behavior, or the
// verify key derived from a freshly unwrapped signing key for
// "strict" verification -- that choice is the caller's (the facade's),
// this package only ever checks whatever key it's given.
func (ts *TrustStore) Load(verifyKey [32]byte) (LoadResult, error) {
	keys, err := ts.readLines()
	if err != nil {
		return LoadResult{}, err
	}
	if len(keys) == 0 {
		if _, err := os.Stat(ts.trustPath()); os.IsNotExist(err) {
			return LoadResult{}, nil
		}
	}

	sigRaw, err := os.ReadFile(ts.sigPath())
	if os.IsNotExist(err) {
		return LoadResult{Keys: keys, Unsigned: true}, nil
	}
	if err != nil {
		return LoadResult{}, errors.Wrap(err, "truststore: reading trust signature")
	}

	var sig trustSigYAML
	if err := yaml.Unmarshal(sigRaw, &sig); err != nil || sig.Signature == "" {
		return LoadResult{}, errors.Wrap(ErrMalformed, "trust signature file")
	}
	sigBytes, err := codec.DecodeBytes(sig.Signature)
	if err != nil {
		return LoadResult{}, errors.Wrap(ErrMalformed, err.Error())
	}

	content, err := os.ReadFile(ts.trustPath())
	if err != nil {
		return LoadResult{}, errors.Wrap(err, "truststore: reading trust file")
	}
	if !ed25519.Verify(ed25519.PublicKey(verifyKey[:]), content, sigBytes) {
		return LoadResult{}, ErrBadSignature
	}
	return LoadResult{Keys: keys}, nil
}

// Save normalizes keys (sorted, deduplicated), signs the resulting
// text with signingKeySeed, and writes both the trust file and its
// signature sibling.
func (ts *TrustStore) Save(keys []string, signingKeySeed [32]byte) error {
	normalized := normalize(keys)
	content := serialize(normalized)

	priv := ed25519.NewKeyFromSeed(signingKeySeed[:])
	sig := ed25519.Sign(priv, []byte(content))

	if err := atomicfile.Write(ts.trustPath(), []byte(content), trustFilePerm); err != nil {
		return errors.Wrap(err, "truststore: writing trust file")
	}

	sigOut, err := yaml.Marshal(trustSigYAML{Signature: codec.EncodeBytes(sig)})
	if err != nil {
		panic(err) // a struct of one plain string cannot fail to marshal
	}
	if err := atomicfile.Write(ts.sigPath(), sigOut, trustFilePerm); err != nil {
		return errors.Wrap(err, "truststore: writing trust signature")
	}
	return nil
}

// Add inserts key into the trust list (a no-op if already present)
// and re-signs.
func (ts *TrustStore) Add(key string, signingKeySeed [32]byte) error {
	keys, err := ts.readLines()
	if err != nil {
		return err
	}
	return ts.Save(append(keys, key), signingKeySeed)
}

// Remove deletes an entry selected either by its literal EncodedKey
// text or by a 1-based decimal index. Removing a key that isn't
// present is a no-op, matching the reference behavior.
func (ts *TrustStore) Remove(selector string, signingKeySeed [32]byte) error {
	keys, err := ts.readLines()
	if err != nil {
		return err
	}

	target := selector
	if idx, ok := parseIndex(selector); ok && idx >= 1 && idx <= len(keys) {
		target = keys[idx-1]
	}

	out := keys[:0:0]
	for _, k := range keys {
		if k != target {
			out = append(out, k)
		}
	}
	return ts.Save(out, signingKeySeed)
}

// Match is one hit from Find: Index is the entry's 1-based position
// in the normalized list, Start/End bound the matched substring within
// Key.
type Match struct {
	Index      int
	Key        string
	Start, End int
}

// Find returns every trust list entry containing substring.
func (ts *TrustStore) Find(substring string) ([]Match, error) {
	keys, err := ts.readLines()
	if err != nil {
		return nil, err
	}
	var matches []Match
	for i, k := range keys {
		if pos := strings.Index(k, substring); pos >= 0 {
			matches = append(matches, Match{Index: i + 1, Key: k, Start: pos, End: pos + len(substring)})
		}
	}
	return matches, nil
}

func (ts *TrustStore) readLines() ([]string, error) {
	raw, err := os.ReadFile(ts.trustPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "truststore: reading trust file")
	}
	lines := strings.Split(string(bytes.TrimRight(raw, "\n")), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	return lines, nil
}

// parseIndex reports whether selector is a selector-as-index: a
// positive integer of at most 4 digits.
func parseIndex(selector string) (int, bool) {
	if len(selector) == 0 || len(selector) > 4 {
		return 0, false
	}
	for _, r := range selector {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(selector)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func serialize(keys []string) string {
	return strings.Join(keys, "\n") + "\n"
}
