// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirs(t *testing.T) (work, home string) {
	t.Helper()
	return t.TempDir(), t.TempDir()
}

func TestLoadDefaults(t *testing.T) {
	work, home := dirs(t)
	c, err := Load(LoadOptions{WorkDir: work, HomeDir: home})
	require.NoError(t, err)

	assert.Equal(t, ModeGlobal, c.Mode)
	assert.Equal(t, filepath.Join(home, RootName), c.Root)
	assert.Equal(t, filepath.Join(home, RootName, "cache"), c.CacheDir())
	assert.Equal(t, filepath.Join(home, RootName, "meta"), c.MetaDir())
	assert.Equal(t, filepath.Join(home, RootName, "status.json"), c.StatusFile())
	assert.Equal(t, 30*time.Second, c.Fetch.Timeout)
	assert.Equal(t, int64(32<<20), c.Fetch.MaxBodyBytes)
	assert.Equal(t, 24*time.Hour, c.Meta.TTL)
	assert.Equal(t, "webimport", c.Fetch.RobotsUserAgent)
	assert.False(t, c.Mirror.Enabled)
}

func TestLoadLocal(t *testing.T) {
	work, home := dirs(t)
	c, err := Load(LoadOptions{WorkDir: work, HomeDir: home, Local: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, RootName), c.Root)
}

func TestLoadFile(t *testing.T) {
	work, home := dirs(t)
	file := filepath.Join(work, "webimport.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
mode: local
root: vendor/web
log_level: debug
fetch:
  wait: 250ms
  respect_robots: true
  headers:
    authorization: Bearer abc
mirror:
  enabled: true
  bucket: modules
  endpoint: localhost:9000
`), 0o644))

	c, err := Load(LoadOptions{ConfigFile: file, WorkDir: work, HomeDir: home})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, "vendor", "web"), c.Root)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 250*time.Millisecond, c.Fetch.Wait)
	assert.True(t, c.Fetch.RespectRobots)
	assert.Equal(t, "Bearer abc", c.Fetch.Headers["authorization"])
	assert.Equal(t, "modules", c.Mirror.S3().Bucket)
	assert.Equal(t, "us-east-1", c.Mirror.S3().Region)
}

func TestLoadMissingFile(t *testing.T) {
	work, home := dirs(t)
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(work, "nope.yaml"), WorkDir: work, HomeDir: home})
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	work, home := dirs(t)
	t.Setenv("WEBIMPORT_FETCH_TIMEOUT", "5s")
	t.Setenv("WEBIMPORT_MODE", "local")

	c, err := Load(LoadOptions{WorkDir: work, HomeDir: home})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.Fetch.Timeout)
	assert.Equal(t, filepath.Join(work, RootName), c.Root)
}

func TestLoadDotEnv(t *testing.T) {
	work, home := dirs(t)
	require.NoError(t, os.WriteFile(filepath.Join(work, ".env"), []byte("WEBIMPORT_META_TTL=1h\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("WEBIMPORT_META_TTL") })

	c, err := Load(LoadOptions{WorkDir: work, HomeDir: home})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, c.Meta.TTL)
}

func TestLoadBadMode(t *testing.T) {
	work, home := dirs(t)
	t.Setenv("WEBIMPORT_MODE", "shared")
	_, err := Load(LoadOptions{WorkDir: work, HomeDir: home})
	assert.Error(t, err)
}

func TestMirrorNeedsBucket(t *testing.T) {
	work, home := dirs(t)
	t.Setenv("WEBIMPORT_MIRROR_ENABLED", "true")
	_, err := Load(LoadOptions{WorkDir: work, HomeDir: home})
	assert.Error(t, err)
}
