// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signengine

import "github.com/pkg/errors"

var (
	// ErrNoData is returned when verification is requested but the
	// target file is absent and the signature record carries no
	// embedded data to fall back on.
	ErrNoData = errors.New("signengine: no data to verify")

	// ErrBadSignature is returned whenever Ed25519 verification fails.
	// It is a distinct, fatal error path: no caller can mistake a
	// forged file for a successful verdict.
	ErrBadSignature = errors.New("signengine: bad signature")
)
