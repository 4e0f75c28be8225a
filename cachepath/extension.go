// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package cachepath

import "strings"

// Recognized extensions.
const (
	DTS  = ".d.ts"
	TS   = ".ts"
	DMTS = ".d.mts"
	MTS  = ".mts"
	DCTS = ".d.cts"
	CTS  = ".cts"
	TSX  = ".tsx"
	JS   = ".js"
	MJS  = ".mjs"
	CJS  = ".cjs"
	JSX  = ".jsx"
	JSON = ".json"
	TXT  = ".txt"
	HTML = ".html"
)

// Default is used when nothing better can be inferred.
const Default = JS

// FromPath classifies the final segment of a slash separated path.
// Declaration suffixes are recognized on the whole basename, so
// "b.d.ts" is a declaration file and "b.ts" is not.
func FromPath(p string) string {
	base := p[strings.LastIndex(p, "/")+1:]
	dot := strings.LastIndex(base, ".")
	if dot == -1 {
		return Default
	}
	switch base[dot+1:] {
	case "ts":
		if strings.HasSuffix(base, DTS) {
			return DTS
		}
		return TS
	case "mts":
		if strings.HasSuffix(base, DMTS) {
			return DMTS
		}
		return MTS
	case "cts":
		if strings.HasSuffix(base, DCTS) {
			return DCTS
		}
		return CTS
	case "tsx":
		return TSX
	case "js":
		return JS
	case "mjs":
		return MJS
	case "cjs":
		return CJS
	case "jsx":
		return JSX
	case "json":
		return JSON
	case "txt":
		return TXT
	case "html":
		return HTML
	default:
		return Default
	}
}

var contentTypes = map[string]string{
	"json":       JSON,
	"javascript": JS,
	"typescript": TS,
	"text":       TXT,
	"html":       HTML,
}

// FromContentType classifies a Content-Type header by its subtype,
// the text after the last "/" and before any parameters.
func FromContentType(header string) string {
	mime := strings.TrimSpace(strings.SplitN(header, ";", 2)[0])
	sub := strings.ToLower(mime[strings.LastIndex(mime, "/")+1:])
	if ext, ok := contentTypes[sub]; ok {
		return ext
	}
	return Default
}

// Replace swaps the extension of the final segment of p for ext. If
// the final segment has none, ext is appended.
func Replace(p, ext string) string {
	slash := strings.LastIndexAny(p, `/\`)
	base := p[slash+1:]
	dot := strings.LastIndex(base, ".")
	if dot == -1 {
		return p + ext
	}
	return p[:len(p)-len(base)] + base[:dot] + ext
}
