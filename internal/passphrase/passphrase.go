// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package passphrase supplies the narrow interface through which a
// passphrase reaches library code, and the implementations of it that
// the CLI (Terminal) and scripted callers (Fixed) pass in. Library code
// (internal/keywrap, internal/keystore, internal/facade) never prompts
// for anything itself; it only ever receives bytes.
package passphrase

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/CodeEspritLibre/songe/internal/memzero"
)

// Source returns a passphrase for the given prompt.
type Source interface {
	Passphrase(prompt string) ([]byte, error)
}

// Terminal reads a passphrase from fd without echoing it, using
// golang.org/x/term rather than a raw bufio.Reader + syscall.Mlock
// pairing.
type Terminal struct {
	// Fd is the file descriptor to read from, typically
	// int(os.Stdin.Fd()).
	Fd int

	// Confirm, if true, re-prompts and requires the two entries match.
	Confirm bool
}

// Passphrase implements Source.
func (t Terminal) Passphrase(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	pass, err := term.ReadPassword(t.Fd)
	fmt.Println()
	if err != nil {
		return nil, errors.Wrap(err, "passphrase: reading from terminal")
	}
	memzero.Lock(pass)
	defer memzero.Unlock(pass)

	if len(pass) == 0 {
		return nil, errors.New("passphrase: empty passphrase")
	}

	if t.Confirm {
		fmt.Print("confirm passphrase: ")
		pass2, err := term.ReadPassword(t.Fd)
		fmt.Println()
		if err != nil {
			memzero.Bytes(pass)
			return nil, errors.Wrap(err, "passphrase: reading confirmation")
		}
		memzero.Lock(pass2)
		defer memzero.Unlock(pass2)
		defer memzero.Bytes(pass2)
		if !bytes.Equal(pass, pass2) {
			memzero.Bytes(pass)
			return nil, errors.New("passphrase: entries don't match")
		}
	}

	return pass, nil
}

// Fixed returns a prearranged passphrase, for non-interactive use
// (scripted callers, and tests) and for "-n" style skip-the-passphrase
// flows where an empty Fixed is passed explicitly rather than left to
// default.
type Fixed []byte

// Passphrase implements Source, ignoring prompt.
func (f Fixed) Passphrase(string) ([]byte, error) {
	out := make([]byte, len(f))
	copy(out, f)
	return out, nil
}
