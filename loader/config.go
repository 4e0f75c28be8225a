// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package loader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/benjaminestes/webimport/scan"
	"github.com/benjaminestes/webimport/version"
	"github.com/charmbracelet/log"
)

// Defaults for zero valued configuration fields.
const (
	DefaultRobotsUserAgent = "webimport"
	DefaultTimeout         = 30 * time.Second
	DefaultMaxBodyBytes    = 32 << 20
	DefaultMaxRedirects    = 10
	DefaultTTL             = 24 * time.Hour
)

// setDefaults fills every zero valued configuration field, keeping
// the non-zero defaults colocated in this file.
func (l *Loader) setDefaults() {
	if l.MetaDir == "" {
		l.MetaDir = filepath.Join(filepath.Dir(l.CacheDir), "meta")
	}
	if l.UserAgent == "" {
		l.UserAgent = version.UserAgent()
	}
	if l.RobotsUserAgent == "" {
		l.RobotsUserAgent = DefaultRobotsUserAgent
	}
	if l.Timeout == 0 {
		l.Timeout = DefaultTimeout
	}
	if l.MaxBodyBytes == 0 {
		l.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if l.MaxRedirects == 0 {
		l.MaxRedirects = DefaultMaxRedirects
	}
	if l.TTL == 0 {
		l.TTL = DefaultTTL
	}
	if l.Logger == nil {
		l.Logger = log.New(io.Discard)
	}
	if l.Scanner == nil {
		l.Scanner = scan.Lexical{}
	}
}

func (l *Loader) validate() error {
	if strings.TrimSpace(l.CacheDir) == "" {
		return errors.New("cache directory is required")
	}
	if l.WaitTime < 0 {
		return fmt.Errorf("wait time must not be negative: %s", l.WaitTime)
	}
	if l.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", l.Timeout)
	}
	if l.MaxBodyBytes < 0 || l.MaxBodyBytes == math.MaxInt64 {
		return fmt.Errorf("max body bytes out of range: %d", l.MaxBodyBytes)
	}
	if l.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must not be negative: %d", l.MaxRedirects)
	}
	return nil
}
