// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/benjaminestes/webimport/loader/data"
)

// Resolver turns an import specifier, as written in the module at
// importer, into the canonical URL to load.
type Resolver interface {
	Resolve(specifier, importer string) (string, error)
}

// ModuleLoader loads a canonical URL for the host.
type ModuleLoader interface {
	Load(ctx context.Context, rawurl string) (*data.LoadResult, error)
}

// Relative is the Resolver for modules that were themselves loaded
// from the network.
type Relative struct{}

func (Relative) Resolve(specifier, importer string) (string, error) {
	return Resolve(specifier, importer)
}

// Resolve rebases specifier onto importer. Absolute http(s)
// specifiers are returned as they are; ./, ../ and / specifiers are
// resolved against a remote importer. Anything else is not this
// package's to resolve.
func Resolve(specifier, importer string) (string, error) {
	if data.IsRemote(specifier) {
		a := data.MakeAddress(specifier)
		if !a.Remote() {
			return "", fmt.Errorf("%w: %s", ErrNotRemote, specifier)
		}
		return a.Full, nil
	}
	if !data.IsRelative(specifier) && !strings.HasPrefix(specifier, "/") {
		return "", fmt.Errorf("%w: %s", ErrNotRemote, specifier)
	}
	base := data.MakeAddress(importer)
	if !base.Remote() {
		return "", fmt.Errorf("%w: %s from %s", ErrNotRemote, specifier, importer)
	}
	a := data.MakeAddressFromRelative(base, specifier)
	if !a.Remote() {
		return "", fmt.Errorf("%w: %s from %s", ErrNotRemote, specifier, importer)
	}
	return a.Full, nil
}
