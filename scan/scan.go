// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package scan extracts module specifiers from fetched artifacts.
//
// Scanners are lexical, not parsers. Lexical is tuned for
// machine-generated declaration files and ES modules; it can report a
// specifier that only appears inside a comment or string, and it
// misses specifiers built at runtime or written across unusual
// syntax. Callers treat results as hints and must tolerate both.
package scan

import "regexp"

// Scanner returns the module specifiers referenced by src, in order
// of appearance. Duplicates are preserved.
type Scanner interface {
	Scan(src []byte) []string
}

var (
	importPattern = regexp.MustCompile(
		`import\s+(?:type\s+)?(?:\{[^}]+\}|\*\s+as\s+\w+|\w+)(?:\s*,\s*(?:\{[^}]+\}|\*\s+as\s+\w+|\w+))?\s+from\s+['"]([^'"]+)['"]`)
	exportPattern = regexp.MustCompile(
		`export\s+(?:type\s+)?(?:\{[^}]*\}|\*(?:\s+as\s+\w+)?|\w+)(?:\s*,\s*(?:\{[^}]+\}|\w+))?\s+from\s+['"]([^'"]+)['"]`)
	sideEffectPattern = regexp.MustCompile(`(?m)^\s*import\s+['"]([^'"]+)['"]`)
	referencePattern  = regexp.MustCompile(`///\s*<reference\s+path\s*=\s*['"]([^'"]+)['"]`)
)

// Lexical finds specifiers in import and export declarations, type
// only or not, plus bare side-effect imports and triple-slash
// reference paths.
type Lexical struct{}

func (Lexical) Scan(src []byte) []string {
	type hit struct {
		at   int
		spec string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{importPattern, exportPattern, sideEffectPattern, referencePattern} {
		for _, m := range re.FindAllSubmatchIndex(src, -1) {
			hits = append(hits, hit{at: m[2], spec: string(src[m[2]:m[3]])})
		}
	}
	// Restore document order across the patterns.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].at < hits[j-1].at; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	specs := make([]string, 0, len(hits))
	for _, h := range hits {
		specs = append(specs, h.spec)
	}
	return specs
}
