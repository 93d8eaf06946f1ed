// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memzero holds the scoped-resource discipline the rest of the
// module relies on for key material: wipe it as soon as it is no
// longer needed, and keep it out of swap while it is.
package memzero

import "golang.org/x/sys/unix"

// Bytes overwrites b with zeros in place. Call it via defer as soon as
// a secret byte slice is acquired, wipe early, wipe often.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Lock pins b in physical memory so the kernel never swaps it to disk.
// Failures are not fatal: not every platform grants CAP_IPC_LOCK, and a
// passphrase that is briefly swappable is still far better than one
// left in plaintext on disk.
func Lock(b []byte) {
	_ = unix.Mlock(b)
}

// Unlock reverses Lock. Call it via defer paired with every Lock.
func Unlock(b []byte) {
	_ = unix.Munlock(b)
}
