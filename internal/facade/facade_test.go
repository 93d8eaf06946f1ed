// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package facade

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CodeEspritLibre/songe/internal/config"
	"github.com/CodeEspritLibre/songe/internal/passphrase"
	"github.com/CodeEspritLibre/songe/internal/signengine"
)

func testFacade(t *testing.T) *Facade {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{Core: config.Config{
		ProjectDir: dir,
		Getenv:     func(string) string { return "" },
	}}
	return New(cfg)
}

func TestGenerateThenShowVerifyAndSigningKeys(t *testing.T) {
	f := testFacade(t)
	pass := passphrase.Fixed("correct horse battery staple")

	vk, err := f.Generate(pass)
	require.NoError(t, err)
	require.Equal(t, byte('P'), vk[0])

	shownVK, err := f.ShowVerifyKey()
	require.NoError(t, err)
	require.Equal(t, vk, shownVK)

	sk, err := f.ShowSigningKey(pass)
	require.NoError(t, err)
	require.Equal(t, byte('K'), sk[0])
}

func TestImportReproducesDerivedVerifyKey(t *testing.T) {
	f1 := testFacade(t)
	pass := passphrase.Fixed("first-passphrase")
	_, err := f1.Generate(pass)
	require.NoError(t, err)
	sk, err := f1.ShowSigningKey(pass)
	require.NoError(t, err)

	f2 := testFacade(t)
	newPass := passphrase.Fixed("second-passphrase")
	vk2, err := f2.Import(sk, newPass)
	require.NoError(t, err)

	vk1, err := f1.ShowVerifyKey()
	require.NoError(t, err)
	require.Equal(t, vk1, vk2)
}

func TestChangePassphraseRotatesWrapping(t *testing.T) {
	f := testFacade(t)
	oldPass := passphrase.Fixed("old-passphrase")
	newPass := passphrase.Fixed("new-passphrase")

	vk, err := f.Generate(oldPass)
	require.NoError(t, err)

	require.NoError(t, f.ChangePassphrase(oldPass, newPass))

	_, err = f.ShowSigningKey(oldPass)
	require.Error(t, err)

	shownVK, err := f.ShowVerifyKey()
	require.NoError(t, err)
	require.Equal(t, vk, shownVK)

	_, err = f.ShowSigningKey(newPass)
	require.NoError(t, err)
}

func TestSignVerifyRoundTripThroughFacade(t *testing.T) {
	f := testFacade(t)
	pass := passphrase.Fixed("correct horse battery staple")
	_, err := f.Generate(pass)
	require.NoError(t, err)

	filePath := filepath.Join(f.cfg.Core.ProjectDir, "notes.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("remember the milk\n"), 0o644))

	require.NoError(t, f.Sign(filePath, signengine.SignOptions{Comment: "grocery list"}, pass))

	result, err := f.Verify(filePath)
	require.NoError(t, err)
	require.Equal(t, signengine.GoodUntrusted, result.Verdict)
}

func TestSignVerifyGoodTrustedAfterTrustAdd(t *testing.T) {
	f := testFacade(t)
	pass := passphrase.Fixed("correct horse battery staple")
	vk, err := f.Generate(pass)
	require.NoError(t, err)

	filePath := filepath.Join(f.cfg.Core.ProjectDir, "notes.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("remember the milk\n"), 0o644))
	require.NoError(t, f.Sign(filePath, signengine.SignOptions{}, pass))

	require.NoError(t, f.TrustAdd(vk, pass))

	result, err := f.Verify(filePath)
	require.NoError(t, err)
	require.Equal(t, signengine.GoodTrusted, result.Verdict)
}

func TestTrustListFiltersBySubstring(t *testing.T) {
	f := testFacade(t)
	pass := passphrase.Fixed("correct horse battery staple")
	vk, err := f.Generate(pass)
	require.NoError(t, err)
	require.NoError(t, f.TrustAdd(vk, pass))
	require.NoError(t, f.TrustAdd("P_SOME_OTHER_KEY_THAT_DOES_NOT_MATCH_______________1", pass))

	res, err := f.TrustList(vk[1:6])
	require.NoError(t, err)
	require.Equal(t, []string{vk}, res.Keys)
}

func TestTrustRemoveByIndex(t *testing.T) {
	f := testFacade(t)
	pass := passphrase.Fixed("correct horse battery staple")
	vk, err := f.Generate(pass)
	require.NoError(t, err)
	require.NoError(t, f.TrustAdd(vk, pass))

	require.NoError(t, f.TrustRemove("1", pass))

	res, err := f.TrustList("")
	require.NoError(t, err)
	require.Empty(t, res.Keys)
}
