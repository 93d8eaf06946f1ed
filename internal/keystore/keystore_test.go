// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CodeEspritLibre/songe/internal/config"
)

func testConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		ProjectDir: dir,
		Getenv: func(name string) string {
			return env[name]
		},
	}
}

func TestStoreThenLoadRoundTrip(t *testing.T) {
	cfg := testConfig(t, nil)
	ks := New(cfg)

	var wrapped [88]byte
	_, err := rand.Read(wrapped[:])
	require.NoError(t, err)
	var verifyKey [32]byte
	_, err = rand.Read(verifyKey[:])
	require.NoError(t, err)

	require.NoError(t, ks.Store(wrapped[:], verifyKey))

	gotWrapped, gotVerifyKey, err := ks.Load()
	require.NoError(t, err)
	require.Equal(t, wrapped[:], gotWrapped)
	require.Equal(t, verifyKey, gotVerifyKey)
}

func TestStoreSetsOwnerOnlyPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permission bits don't apply on windows")
	}
	cfg := testConfig(t, nil)
	ks := New(cfg)

	var wrapped [88]byte
	var verifyKey [32]byte
	require.NoError(t, ks.Store(wrapped[:], verifyKey))

	path := filepath.Join(cfg.ProjectDir, config.KeyFileName)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreDeletesStaleTrustSignature(t *testing.T) {
	cfg := testConfig(t, nil)
	ks := New(cfg)

	sigPath := filepath.Join(cfg.ProjectDir, config.TrustSigFileName)
	require.NoError(t, os.WriteFile(sigPath, []byte("stale"), 0o600))

	var wrapped [88]byte
	var verifyKey [32]byte
	require.NoError(t, ks.Store(wrapped[:], verifyKey))

	_, err := os.Stat(sigPath)
	require.True(t, os.IsNotExist(err))
}

func TestLoadMissingKeyFileFails(t *testing.T) {
	cfg := testConfig(t, nil)
	ks := New(cfg)
	_, _, err := ks.Load()
	require.ErrorIs(t, err, ErrBadKeyfile)
}

func TestResolvePathPrefersSongeHomeOverHome(t *testing.T) {
	songeHome := t.TempDir()
	home := t.TempDir()
	cfg := testConfig(t, map[string]string{
		config.EnvSongeHome: songeHome,
		config.EnvHome:      home,
	})
	ks := New(cfg)

	path, err := ks.ResolvePath(true)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(songeHome, config.KeyFileName), path)
}
