// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"bytes"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/CodeEspritLibre/songe/internal/codec"
)

// keyFileYAML is the on-disk structure of .songe.key. The "verifykey"
// field is, despite its name, encoded with the signing-key tag -- see
// codec.EncodeSigningKey's doc comment. Implementations MUST match
// the reference byte-for-byte.
type keyFileYAML struct {
	VerifyKey  string `yaml:"verifykey"`
	SigningKey string `yaml:"signingkey"`
}

func decodeKeyFile(raw []byte) (wrapped []byte, verifyKey [32]byte, err error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var kf keyFileYAML
	if err := dec.Decode(&kf); err != nil {
		return nil, [32]byte{}, errors.Wrap(ErrBadKeyfile, err.Error())
	}
	if kf.VerifyKey == "" || kf.SigningKey == "" {
		return nil, [32]byte{}, errors.Wrap(ErrBadKeyfile, "missing verifykey or signingkey")
	}

	verifyKey, err = codec.DecodeSigningTagged(kf.VerifyKey)
	if err != nil {
		return nil, [32]byte{}, errors.Wrap(ErrBadKeyfile, err.Error())
	}

	wrapped, err = codec.DecodeBytes(kf.SigningKey)
	if err != nil {
		return nil, [32]byte{}, errors.Wrap(ErrBadKeyfile, err.Error())
	}
	return wrapped, verifyKey, nil
}

func encodeKeyFile(wrapped []byte, verifyKey [32]byte) []byte {
	kf := keyFileYAML{
		VerifyKey:  codec.EncodeSigningKey(verifyKey),
		SigningKey: codec.EncodeBytes(wrapped),
	}
	out, err := yaml.Marshal(kf)
	if err != nil {
		// yaml.Marshal on a struct of plain strings cannot fail.
		panic(err)
	}
	return out
}
