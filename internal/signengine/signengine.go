// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signengine implements the sign and verify state machines:
// the system's largest and most security-critical piece. It composes
// internal/sigrecord (the canonical hash input and on-disk record)
// with internal/truststore (trust reporting).
package signengine

import (
	"crypto/ed25519"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/CodeEspritLibre/songe/internal/codec"
	"github.com/CodeEspritLibre/songe/internal/sigrecord"
	"github.com/CodeEspritLibre/songe/internal/truststore"
)

// Engine signs and verifies files. The zero value is usable; New only
// exists to set a default clock.
type Engine struct {
	// Now supplies the current time for signing. Defaults to
	// time.Now; tests override it for deterministic datetimes.
	Now func() time.Time
}

// New returns an Engine with the real wall clock.
func New() *Engine {
	return &Engine{Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// SignOptions configures a single Sign call.
type SignOptions struct {
	Comment  string
	Embedded bool
}

// Sign builds the SignatureRecord for filePath under signingKeySeed,
// either streaming the file (detached) or materializing it whole
// (embedded mode reads the entire file into memory, so it is not meant
// for arbitrarily large files). It does not write anything to disk;
// that is internal/facade's job, so this package stays testable
// without a filesystem round trip for the signature bytes themselves.
func (e *Engine) Sign(filePath string, opts SignOptions, signingKeySeed [32]byte, verifyKey [32]byte) (sigrecord.Record, error) {
	datetime := e.now().Unix()

	hio := sigrecord.HashInputOptions{
		HasComment: opts.Comment != "",
		Comment:    opts.Comment,
		DateTime:   datetime,
	}

	rec := sigrecord.Record{
		DateTime:  datetime,
		VerifyKey: codec.EncodeVerifyKey(verifyKey),
	}
	if opts.Comment != "" {
		rec.Comment = opts.Comment
	}

	if opts.Embedded {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return sigrecord.Record{}, errors.Wrap(err, "signengine: reading file to embed")
		}
		hio.EmbeddedData = data
		rec.Data = codec.EncodeBytes(data)
	} else {
		f, err := os.Open(filePath)
		if err != nil {
			return sigrecord.Record{}, errors.Wrap(err, "signengine: opening file")
		}
		defer f.Close()
		hio.DetachedFile = f
	}

	digest, err := sigrecord.BuildHashInput(hio)
	if err != nil {
		return sigrecord.Record{}, err
	}

	priv := ed25519.NewKeyFromSeed(signingKeySeed[:])
	rec.Signature = codec.EncodeBytes(ed25519.Sign(priv, digest[:]))

	return rec, nil
}

// Verdict is the outcome of a successful verification. A failed
// verification never produces a Verdict: it returns ErrBadSignature or
// ErrNoData instead.
type Verdict int

const (
	// GoodUntrusted: the signature is valid, but its verify key is not
	// in the trust store (or the trust store's own signature failed to
	// verify, or no local verify key was given to check it with).
	GoodUntrusted Verdict = iota
	// GoodTrusted: the signature is valid and its verify key is
	// present in a trust store whose own signature checked out or was
	// absent altogether (VerifyResult.TrustUnsigned reports the latter).
	GoodTrusted
)

// VerifyResult is everything Verify reports beyond the Verdict itself.
type VerifyResult struct {
	Verdict Verdict

	// RecoveredData holds the file's original bytes when verification
	// ran in embedded mode because filePath did not exist on disk. A
	// caller recovering a deleted file writes this to the path it
	// expected the file at (or to standard output).
	RecoveredData []byte

	// IgnoredEmbeddedData is true when filePath existed on disk AND
	// the record also carried embedded data: the on-disk file wins and
	// the embedded copy is ignored, but the caller should warn about it.
	IgnoredEmbeddedData bool

	// TrustUnsigned is true when the trust store's signature sibling
	// was absent.
	TrustUnsigned bool

	// TrustStoreCorrupted is true when the trust store's own
	// signature failed to verify. The verdict for the file under test
	// still stands -- the file's signature is a separate question from
	// the trust database's integrity -- but the caller should surface
	// this loudly.
	TrustStoreCorrupted bool
}

// Verify checks filePath's companion <filePath>.sgsig. trustVerifyKey
// is the local project's declared verify key, used to authenticate the
// trust store; pass nil if no local key is configured, in which case
// the verdict can only ever be GoodUntrusted.
func (e *Engine) Verify(filePath string, sigBytes []byte, ts *truststore.TrustStore, trustVerifyKey *[32]byte) (VerifyResult, error) {
	rec, err := sigrecord.Parse(sigBytes)
	if err != nil {
		return VerifyResult{}, err
	}

	fileOnDisk := fileExists(filePath)
	if !fileOnDisk && !rec.HasData() {
		return VerifyResult{}, ErrNoData
	}

	hio := sigrecord.HashInputOptions{
		HasComment: rec.Comment != "",
		Comment:    rec.Comment,
		DateTime:   rec.DateTime,
	}

	var result VerifyResult
	if rec.HasData() {
		// The record was built in embedded mode, so the signed digest
		// fed the file's bytes through the embedded slot (separator
		// prefixed, after comment and datetime) -- it must be
		// reconstructed the same way regardless of where the bytes
		// come from now.
		if fileOnDisk {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return VerifyResult{}, errors.Wrap(err, "signengine: reading file")
			}
			hio.EmbeddedData = data
			result.IgnoredEmbeddedData = true
		} else {
			data, err := codec.DecodeBytes(rec.Data)
			if err != nil {
				return VerifyResult{}, err
			}
			hio.EmbeddedData = data
			result.RecoveredData = data
		}
	} else {
		f, err := os.Open(filePath)
		if err != nil {
			return VerifyResult{}, errors.Wrap(err, "signengine: opening file")
		}
		defer f.Close()
		hio.DetachedFile = f
	}

	digest, err := sigrecord.BuildHashInput(hio)
	if err != nil {
		return VerifyResult{}, err
	}

	verifyKey, err := codec.DecodeVerifyKey(rec.VerifyKey)
	if err != nil {
		return VerifyResult{}, err
	}
	sig, err := codec.DecodeBytes(rec.Signature)
	if err != nil {
		return VerifyResult{}, err
	}
	if !ed25519.Verify(ed25519.PublicKey(verifyKey[:]), digest[:], sig) {
		return VerifyResult{}, ErrBadSignature
	}

	result.Verdict = GoodUntrusted
	if ts != nil && trustVerifyKey != nil {
		loaded, err := ts.Load(*trustVerifyKey)
		if err != nil {
			if errors.Is(err, truststore.ErrBadSignature) {
				result.TrustStoreCorrupted = true
			} else {
				return VerifyResult{}, err
			}
		} else {
			result.TrustUnsigned = loaded.Unsigned
			if containsKey(loaded.Keys, rec.VerifyKey) {
				result.Verdict = GoodTrusted
			}
		}
	}

	return result, nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
