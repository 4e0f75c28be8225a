// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package data

// ContentKind tells the host how to treat loaded contents.
type ContentKind string

const (
	KindJSON        ContentKind = "json"
	KindScript      ContentKind = "script"
	KindDeclaration ContentKind = "declaration"
	KindText        ContentKind = "text"
	KindMarkup      ContentKind = "markup"
)

// KindOf classifies a stored artifact by its canonical extension.
func KindOf(ext string) ContentKind {
	switch ext {
	case ".json":
		return KindJSON
	case ".d.ts", ".d.mts", ".d.cts":
		return KindDeclaration
	case ".txt":
		return KindText
	case ".html":
		return KindMarkup
	default:
		return KindScript
	}
}

// LoadResult is what the host receives for one URL.
type LoadResult struct {
	// URL is the address the host asked for, before any redirect.
	URL string
	// Path is the cache path the contents were persisted at.
	Path     string
	Contents []byte
	Kind     ContentKind
}
