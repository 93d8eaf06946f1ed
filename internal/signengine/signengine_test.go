// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signengine

import (
	"bytes"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CodeEspritLibre/songe/internal/codec"
	"github.com/CodeEspritLibre/songe/internal/sigrecord"
	"github.com/CodeEspritLibre/songe/internal/truststore"
)

func newKeyPair(t *testing.T) (signingSeed, verifyKey [32]byte) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	copy(signingSeed[:], priv.Seed())
	copy(verifyKey[:], pub)
	return
}

func encodeRecord(t *testing.T, rec sigrecord.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, sigrecord.Encode(&buf, rec, "test signature"))
	return buf.Bytes()
}

func TestSignVerifyDetachedGoodTrusted(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(file, []byte("Hello, world!\n"), 0o644))

	seed, vk := newKeyPair(t)
	engine := &Engine{Now: func() time.Time { return time.Unix(1_700_000_000, 0) }}

	rec, err := engine.Sign(file, SignOptions{Comment: "release v1"}, seed, vk)
	require.NoError(t, err)

	ts := truststore.New(dir)
	require.NoError(t, ts.Add(codec.EncodeVerifyKey(vk), seed))

	result, err := engine.Verify(file, encodeRecord(t, rec), ts, &vk)
	require.NoError(t, err)
	require.Equal(t, GoodTrusted, result.Verdict)
}

func TestSignVerifyGoodUntrustedWithoutTrustEntry(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(file, []byte("Hello, world!\n"), 0o644))

	seed, vk := newKeyPair(t)
	engine := New()

	rec, err := engine.Sign(file, SignOptions{}, seed, vk)
	require.NoError(t, err)

	ts := truststore.New(dir)
	result, err := engine.Verify(file, encodeRecord(t, rec), ts, &vk)
	require.NoError(t, err)
	require.Equal(t, GoodUntrusted, result.Verdict)
}

func TestVerifyDetectsTamperedFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(file, []byte("Hello, world!\n"), 0o644))

	seed, vk := newKeyPair(t)
	engine := New()
	rec, err := engine.Sign(file, SignOptions{}, seed, vk)
	require.NoError(t, err)

	// Flip 'H' (0x48) to 'I' (0x49).
	require.NoError(t, os.WriteFile(file, []byte("Iello, world!\n"), 0o644))

	_, err = engine.Verify(file, encodeRecord(t, rec), nil, nil)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyDetectsTamperedComment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(file, []byte("Hello, world!\n"), 0o644))

	seed, vk := newKeyPair(t)
	engine := New()
	rec, err := engine.Sign(file, SignOptions{Comment: "original"}, seed, vk)
	require.NoError(t, err)

	rec.Comment = "tampered"
	_, err = engine.Verify(file, encodeRecord(t, rec), nil, nil)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestSignVerifyEmbeddedRecoversDataAfterDeletion(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.txt")
	content := []byte("Hello, world!\n")
	require.NoError(t, os.WriteFile(file, content, 0o644))

	seed, vk := newKeyPair(t)
	engine := New()
	rec, err := engine.Sign(file, SignOptions{Embedded: true}, seed, vk)
	require.NoError(t, err)

	require.NoError(t, os.Remove(file))

	result, err := engine.Verify(file, encodeRecord(t, rec), nil, nil)
	require.NoError(t, err)
	require.Equal(t, content, result.RecoveredData)
}

func TestVerifyNoDataWhenFileAndEmbeddedBothAbsent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	seed, vk := newKeyPair(t)
	engine := New()
	rec, err := engine.Sign(file, SignOptions{}, seed, vk) // detached, no Data field
	require.NoError(t, err)

	require.NoError(t, os.Remove(file))

	_, err = engine.Verify(file, encodeRecord(t, rec), nil, nil)
	require.ErrorIs(t, err, ErrNoData)
}

func TestVerifyIgnoresEmbeddedDataWhenFilePresent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hello.txt")
	content := []byte("Hello, world!\n")
	require.NoError(t, os.WriteFile(file, content, 0o644))

	seed, vk := newKeyPair(t)
	engine := New()
	rec, err := engine.Sign(file, SignOptions{Embedded: true}, seed, vk)
	require.NoError(t, err)

	result, err := engine.Verify(file, encodeRecord(t, rec), nil, nil)
	require.NoError(t, err)
	require.True(t, result.IgnoredEmbeddedData)
	require.Nil(t, result.RecoveredData)
}
