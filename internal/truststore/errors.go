// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package truststore

import "github.com/pkg/errors"

var (
	// ErrBadSignature is returned when the trust file's signature
	// sibling fails to verify against the expected verify key.
	ErrBadSignature = errors.New("truststore: bad signature")

	// ErrMalformed is returned when the signature sibling can't be
	// parsed as a structured record.
	ErrMalformed = errors.New("truststore: malformed trust signature")
)
