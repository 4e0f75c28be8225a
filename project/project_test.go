// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "root", "status.json")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s := NewStatus(filepath.Join(dir, "root"), filepath.Join(dir, "root", "cache"), filepath.Join(dir, "root", "meta"), now)
	require.NoError(t, WriteStatus(path, s))

	got, err := ReadStatus(path)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, now.UnixMilli(), got.Timestamp)
	assert.Equal(t, "Fri, 01 Mar 2024 12:00:00 GMT", got.Date)
	assert.Equal(t, s, *got)
}

func TestReadStatusMissing(t *testing.T) {
	_, err := ReadStatus(filepath.Join(t.TempDir(), "status.json"))
	assert.True(t, os.IsNotExist(err))
}

func readPaths(t *testing.T, path string) map[string][]string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var config struct {
		CompilerOptions struct {
			Paths map[string][]string `json:"paths"`
		} `json:"compilerOptions"`
	}
	require.NoError(t, json.Unmarshal(b, &config))
	return config.CompilerOptions.Paths
}

func TestEnsureCompilerPathsCreates(t *testing.T) {
	cwd := t.TempDir()
	tsconfig := filepath.Join(cwd, "tsconfig.json")

	written, err := EnsureCompilerPaths(tsconfig, filepath.Join(cwd, ".import", "cache"), cwd, false)
	require.NoError(t, err)
	assert.True(t, written)

	paths := readPaths(t, tsconfig)
	assert.Equal(t, []string{"./.import/cache/http/*"}, paths[HTTPKey])
	assert.Equal(t, []string{"./.import/cache/https/*"}, paths[HTTPSKey])
	assert.Equal(t, []string{"./.import/cache/http/*", "./.import/cache/https/*"}, paths[WebKey])

	b, err := os.ReadFile(tsconfig)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "{\n    \"compilerOptions\""))
}

func TestEnsureCompilerPathsKeepsExisting(t *testing.T) {
	cwd := t.TempDir()
	tsconfig := filepath.Join(cwd, "tsconfig.json")
	existing := `{"compilerOptions":{"strict":false,"paths":{"http://*":["a"],"https://*":["b"],"web:*":["c"]}}}`
	require.NoError(t, os.WriteFile(tsconfig, []byte(existing), 0o644))

	written, err := EnsureCompilerPaths(tsconfig, "/var/cache/webimport", cwd, false)
	require.NoError(t, err)
	assert.False(t, written)
	b, err := os.ReadFile(tsconfig)
	require.NoError(t, err)
	assert.Equal(t, existing, string(b))

	written, err = EnsureCompilerPaths(tsconfig, "/var/cache/webimport", cwd, true)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, []string{"/var/cache/webimport/https/*"}, readPaths(t, tsconfig)[HTTPSKey])
}

func TestEnsureCompilerPathsBadConfig(t *testing.T) {
	cwd := t.TempDir()
	tsconfig := filepath.Join(cwd, "tsconfig.json")
	require.NoError(t, os.WriteFile(tsconfig, []byte("{"), 0o644))

	_, err := EnsureCompilerPaths(tsconfig, cwd, cwd, false)
	assert.Error(t, err)
}

func TestLink(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global")
	local := filepath.Join(dir, "work", ".import")
	require.NoError(t, os.MkdirAll(global, 0o755))

	require.NoError(t, Link(global, local))
	target, err := os.Readlink(local)
	require.NoError(t, err)
	assert.Equal(t, global, target)

	// Linking again is a no-op.
	require.NoError(t, Link(global, local))

	other := filepath.Join(dir, "other")
	assert.Error(t, Link(other, local))
}
