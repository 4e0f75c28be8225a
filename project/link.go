// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Link points local at the global root with a symbolic link. An
// existing link to global is accepted; anything else at local is an
// error.
func Link(global, local string) error {
	if target, err := os.Readlink(local); err == nil {
		if filepath.Clean(target) == filepath.Clean(global) {
			return nil
		}
		return fmt.Errorf("%s already links to %s", local, target)
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return err
	}
	return os.Symlink(global, local)
}
