// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sigrecord builds and parses the .sgsig signature payload. It
// owns the single most important invariant in the system: the
// canonical hash input that both sign and verify must reconstruct
// byte-for-byte.
package sigrecord

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/CodeEspritLibre/songe/internal/digest"
)

// commentPrefix marks the leading human-readable banner lines,
// spelled as a YAML comment so any YAML parser -- not just this
// package's Parse -- tolerates it ahead of the structured body.
const commentPrefix = "# "

// separator is the five literal ASCII characters backslash, zero, x,
// zero, zero -- NOT a NUL byte. This is a quirk inherited from the
// reference implementation that MUST be preserved: changing it would
// silently break every signature already issued.
const separator = `\0x00`

// Record is the structured body of a .sgsig file. Field order is
// preserved on encode since yaml.v3 marshals struct fields in
// declaration order.
type Record struct {
	Comment   string `yaml:"comment,omitempty"`
	DateTime  int64  `yaml:"datetime"`
	VerifyKey string `yaml:"verifykey"`
	Data      string `yaml:"data,omitempty"` // base64, present iff embedded
	Signature string `yaml:"signature"`
}

// HasData reports whether the record carries embedded file bytes.
func (r Record) HasData() bool {
	return r.Data != ""
}

// Encode writes the banner followed by the YAML body to w.
func Encode(w io.Writer, r Record, bannerSubject string) error {
	if _, err := io.WriteString(w, commentPrefix+"songe signature\n"); err != nil {
		return errors.Wrap(err, "sigrecord: writing banner")
	}
	if _, err := io.WriteString(w, commentPrefix+bannerSubject+"\n"); err != nil {
		return errors.Wrap(err, "sigrecord: writing banner")
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "sigrecord: encoding body")
	}
	return nil
}

// Parse reads a .sgsig file's bytes. Leading "#"-prefixed comment
// lines (the banner, or any other future leading annotation) are
// tolerated; the YAML decoder is also put in strict mode so unknown
// fields in the structured body are rejected.
func Parse(raw []byte) (Record, error) {
	sc := bufio.NewScanner(bytes.NewReader(raw))
	var body bytes.Buffer
	sawBody := false
	for sc.Scan() {
		line := sc.Text()
		if !sawBody && isCommentLine(line) {
			continue
		}
		sawBody = true
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return Record{}, errors.Wrap(ErrMalformed, err.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(body.Bytes()))
	dec.KnownFields(true)
	var r Record
	if err := dec.Decode(&r); err != nil {
		return Record{}, errors.Wrap(ErrMalformed, err.Error())
	}
	if r.VerifyKey == "" || r.Signature == "" {
		return Record{}, errors.Wrap(ErrMalformed, "missing verifykey or signature")
	}
	var present struct {
		DateTime *int64 `yaml:"datetime"`
	}
	if err := yaml.Unmarshal(body.Bytes(), &present); err != nil || present.DateTime == nil {
		return Record{}, errors.Wrap(ErrMalformed, "missing datetime")
	}
	return r, nil
}

func isCommentLine(line string) bool {
	return len(line) > 0 && line[0] == '#'
}

// HashInputOptions describes how to assemble the canonical signing
// input. Exactly one of DetachedFile or EmbeddedData should carry the
// signed content's bytes, matching the mode the record was (or will
// be) built for.
type HashInputOptions struct {
	// DetachedFile is streamed first, for detached-mode signatures.
	// Nil in embedded mode.
	DetachedFile io.Reader

	HasComment bool
	Comment    string

	DateTime int64

	// EmbeddedData is fed last, for embedded-mode signatures. Nil in
	// detached mode.
	EmbeddedData []byte
}

// BuildHashInput reconstructs the 64-byte SHA-512 digest that is
// itself signed, feeding chunks in one canonical order: file bytes
// (detached) first, then comment, then datetime, then embedded file
// bytes. Sign and verify MUST call this with equivalent options or
// signatures will not verify.
func BuildHashInput(opts HashInputOptions) ([digest.Size]byte, error) {
	acc := digest.New()

	if opts.DetachedFile != nil {
		if _, err := io.Copy(acc, opts.DetachedFile); err != nil {
			return [digest.Size]byte{}, errors.Wrap(err, "sigrecord: hashing file")
		}
	}
	if opts.HasComment {
		acc.Write([]byte(separator))
		acc.Write([]byte(opts.Comment))
	}
	acc.Write([]byte(separator))
	acc.Write([]byte(strconv.FormatInt(opts.DateTime, 10)))
	if opts.EmbeddedData != nil {
		acc.Write([]byte(separator))
		acc.Write(opts.EmbeddedData)
	}

	return acc.Finalize(), nil
}
