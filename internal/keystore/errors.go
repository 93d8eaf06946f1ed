// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import "github.com/pkg/errors"

// ErrBadKeyfile covers a missing key file, a malformed one, and a
// post-unwrap verify-key mismatch that callers should check for.
var ErrBadKeyfile = errors.New("keystore: bad key file")
