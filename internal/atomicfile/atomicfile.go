// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package atomicfile writes files through a temporary sibling and an
// atomic rename, bounding the damage a crash or SIGINT mid-write can
// do to whole-file granularity. Every on-disk record this module
// writes (key file, trust file, trust signature) goes through it.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Write creates (or replaces) path with data, writing to a uniquely
// named "<name>.tmp-*" sibling in the same directory first, syncing
// it, then renaming it into place.
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "atomicfile: creating temp file")
	}
	tmpPath := tmp.Name()
	// If anything below fails, don't leave the temp file behind.
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "atomicfile: writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "atomicfile: syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "atomicfile: closing temp file")
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return errors.Wrap(err, "atomicfile: setting permissions")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "atomicfile: renaming into place")
	}
	succeeded = true
	return nil
}
