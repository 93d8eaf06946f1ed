// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package facade

import (
	"github.com/CodeEspritLibre/songe/internal/config"
)

// Config bundles everything a Facade needs beyond the passphrase
// source each operation receives explicitly, as an explicit value so
// tests never touch process environment or a package-level singleton.
type Config struct {
	Core config.Config
}

// DefaultConfig returns a Config rooted at the current working
// directory, reading the real process environment.
func DefaultConfig() (Config, error) {
	core, err := config.Default()
	if err != nil {
		return Config{}, err
	}
	return Config{Core: core}, nil
}
