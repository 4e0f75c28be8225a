// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package cachepath maps remote module URLs to files under a cache
// root and classifies them by extension.
//
// A URL maps to <root>/<scheme>/<host[:port]>/<segments...>, with the
// classified extension appended when the last segment lacks it. The
// mapping depends only on the URL string and the extension, so the
// same URL always lands on the same file.
package cachepath

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// For returns the cache path of u under root, without extension
// handling. Dot segments in the URL path are collapsed first so a
// path can never climb out of its host directory.
func For(u *url.URL, root string) string {
	segments := []string{root, u.Scheme, u.Host}
	clean := path.Clean("/" + u.EscapedPath())
	for _, s := range strings.Split(clean, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return filepath.Join(segments...)
}

// Ensure appends the extension classified from u's path to p, unless
// p already ends with exactly that extension.
func Ensure(p string, u *url.URL) string {
	ext := FromPath(u.Path)
	if strings.HasSuffix(p, ext) {
		return p
	}
	return p + ext
}
