// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package loader

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestMissingCacheDir(t *testing.T) {
	l := &Loader{}
	if err := l.Start(); err == nil {
		t.Fatalf("missing cache dir should trigger error on start")
	}
}

func TestBadWait(t *testing.T) {
	l := &Loader{CacheDir: t.TempDir(), WaitTime: -time.Second}
	if err := l.Start(); err == nil {
		t.Fatalf("negative wait should trigger error on start")
	}
}

func TestMaxBodyBytesOverflow(t *testing.T) {
	l := &Loader{CacheDir: t.TempDir(), MaxBodyBytes: math.MaxInt64}
	if err := l.Start(); err == nil {
		t.Fatalf("max body bytes of MaxInt64 should trigger error on start")
	}
}

func TestNotStarted(t *testing.T) {
	l := &Loader{CacheDir: t.TempDir()}
	_, err := l.Load(context.Background(), "https://example.com/mod.js")
	if !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	l := &Loader{CacheDir: dir + "/deps"}
	if err := l.Start(); err != nil {
		t.Fatalf("%v", err)
	}
	if l.MetaDir != dir+"/meta" {
		t.Errorf("meta dir: expected %s, got %s", dir+"/meta", l.MetaDir)
	}
	if l.MaxRedirects != DefaultMaxRedirects {
		t.Errorf("max redirects: expected %d, got %d", DefaultMaxRedirects, l.MaxRedirects)
	}
	if l.TTL != DefaultTTL {
		t.Errorf("ttl: expected %s, got %s", DefaultTTL, l.TTL)
	}
	if l.Scanner == nil || l.Logger == nil {
		t.Errorf("scanner and logger should be set")
	}
}
