// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import "github.com/pkg/errors"

var (
	// ErrBadEncoding is returned when a Base32 or Base64 string does
	// not decode under the required alphabet.
	ErrBadEncoding = errors.New("codec: bad encoding")

	// ErrBadChecksum is returned when a decoded key's CRC-16 does not
	// match its body.
	ErrBadChecksum = errors.New("codec: bad checksum")
)
