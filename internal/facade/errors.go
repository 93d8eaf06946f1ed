// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package facade

import (
	"github.com/pkg/errors"

	"github.com/CodeEspritLibre/songe/internal/keystore"
)

// ErrVerifyKeyMismatch is returned when an unwrapped signing key does
// not derive the verify key declared in the key file -- a sign of a
// tampered or swapped key file. It wraps keystore.ErrBadKeyfile, so
// errors.Is matches either sentinel.
var ErrVerifyKeyMismatch = errors.WithMessage(keystore.ErrBadKeyfile, "facade: verify key mismatch")
