// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers bucket checks and object uploads. The first bucket
// check is denied.
type fakeS3 struct {
	mu      sync.Mutex
	heads   int
	objects map[string]bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodHead:
		f.heads++
		if f.heads == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		f.objects[strings.TrimPrefix(r.URL.Path, "/")] = true
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3MirrorRetriesBucketCheck(t *testing.T) {
	fake := &fakeS3{objects: map[string]bool{}}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	m, err := NewS3Mirror(S3Config{
		Endpoint:  strings.TrimPrefix(ts.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "modules",
		Prefix:    "cache",
	})
	require.NoError(t, err)

	ctx := context.Background()
	assert.Error(t, m.Put(ctx, "https/h/a.js", []byte("a")))
	require.NoError(t, m.Put(ctx, "https/h/a.js", []byte("a")))
	require.NoError(t, m.Put(ctx, "https/h/b.js", []byte("b")))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 2, fake.heads)
	assert.True(t, fake.objects["modules/cache/https/h/a.js"])
	assert.True(t, fake.objects["modules/cache/https/h/b.js"])
}
