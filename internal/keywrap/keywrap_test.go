// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keywrap

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomSigningKey(t *testing.T) [32]byte {
	t.Helper()
	var k [32]byte
	_, err := rand.Read(k[:])
	require.NoError(t, err)
	return k
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	k := randomSigningKey(t)
	wrapped, err := Wrap(k, []byte("correct horse battery staple"))
	require.NoError(t, err)
	require.Len(t, wrapped, WrappedLen)

	got, err := Unwrap(wrapped, []byte("correct horse battery staple"))
	require.NoError(t, err)
	require.Equal(t, k, got)
}

func TestUnwrapWrongPassphrase(t *testing.T) {
	k := randomSigningKey(t)
	wrapped, err := Wrap(k, []byte("p1"))
	require.NoError(t, err)

	_, err = Unwrap(wrapped, []byte("p2"))
	require.ErrorIs(t, err, ErrBadPassphrase)
}

func TestUnwrapRejectsWrongLength(t *testing.T) {
	_, err := Unwrap([]byte("too short"), []byte("anything"))
	require.ErrorIs(t, err, ErrBadKeyfile)
}

func TestWrapProducesFreshSaltAndNonce(t *testing.T) {
	k := randomSigningKey(t)
	a, err := Wrap(k, []byte("pw"))
	require.NoError(t, err)
	b, err := Wrap(k, []byte("pw"))
	require.NoError(t, err)
	require.NotEqual(t, a, b, "salt/nonce must be freshly random each call")
}
