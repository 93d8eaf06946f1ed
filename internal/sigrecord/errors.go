// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sigrecord

import "github.com/pkg/errors"

// ErrMalformed is returned when a .sgsig file's structured body cannot
// be parsed: truncated YAML, an unknown field, or a required field
// (verifykey, datetime, signature) missing.
var ErrMalformed = errors.New("sigrecord: malformed signature record")
