// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keywrap

import "github.com/pkg/errors"

var (
	// ErrBadPassphrase is returned when the secretbox fails to
	// authenticate. A wrong passphrase and ciphertext corruption are
	// deliberately indistinguishable, both are fatal to Unwrap.
	ErrBadPassphrase = errors.New("keywrap: bad passphrase")

	// ErrBadKeyfile is returned when the wrapped key is not exactly
	// the 88-byte salt||nonce||ciphertext layout.
	ErrBadKeyfile = errors.New("keywrap: malformed wrapped key")
)
