// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config bundles environment-derived settings into an
// explicit, immutable value passed down to every component
// constructor, so tests never need to mutate process-global
// environment state.
package config

import "os"

// Environment variable names.
const (
	EnvSongeHome = "SONGE_HOME"
	EnvHome      = "HOME"
)

// Default file names.
const (
	KeyFileName      = ".songe.key"
	TrustFileName    = ".songe.trust"
	TrustSigFileName = ".songe.trust.sgsig"
	SigExt           = ".sgsig"
)

// Config bundles the paths a Facade operates against. The zero value
// is not useful; build one with Default.
type Config struct {
	// ProjectDir is the directory ./.songe.key, ./.songe.trust, and
	// ./.songe.trust.sgsig are considered relative to for "current
	// directory" resolution.
	ProjectDir string

	// Getenv is used instead of os.Getenv so tests can inject a fake
	// environment without mutating process state.
	Getenv func(string) string
}

// Default returns a Config rooted at the current working directory,
// using the real process environment.
func Default() (Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}
	return Config{ProjectDir: wd, Getenv: os.Getenv}, nil
}

// env returns c.Getenv if set, falling back to os.Getenv so a
// zero-value Config (as might appear in a quick test) still works.
func (c Config) env(name string) string {
	if c.Getenv != nil {
		return c.Getenv(name)
	}
	return os.Getenv(name)
}

// SongeHome returns the SONGE_HOME environment variable's value, or
// "" if unset.
func (c Config) SongeHome() string {
	return c.env(EnvSongeHome)
}

// Home returns the HOME environment variable's value, or "" if unset.
func (c Config) Home() string {
	return c.env(EnvHome)
}
