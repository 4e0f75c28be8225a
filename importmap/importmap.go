// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package importmap resolves bare specifiers through an import map, a
// JSON document with "imports" and "scopes" tables that point module
// names and URL prefixes at remote addresses.
package importmap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/benjaminestes/webimport/loader"
	"github.com/benjaminestes/webimport/loader/data"
)

const maxMapBytes = 4 << 20

type document struct {
	Imports map[string]string            `json:"imports"`
	Scopes  map[string]map[string]string `json:"scopes"`
}

// Map is a parsed import map. Keys that look like URLs and every
// address have been resolved against the map's base URL.
type Map struct {
	Base    string
	Imports map[string]string
	Scopes  map[string]map[string]string
}

var _ loader.Resolver = (*Map)(nil)

// Parse reads an import map. base is the URL the map was served from
// and may be empty, in which case relative keys and addresses are
// kept only if they are already absolute.
func Parse(in io.Reader, base string) (*Map, error) {
	var doc document
	if err := json.NewDecoder(in).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse import map: %w", err)
	}
	baseAddr := data.MakeAddress(base)
	m := &Map{
		Base:    base,
		Imports: normalize(doc.Imports, baseAddr),
		Scopes:  make(map[string]map[string]string),
	}
	for scope, table := range doc.Scopes {
		prefix, ok := resolveAgainst(baseAddr, scope)
		if !ok {
			continue
		}
		m.Scopes[prefix] = normalize(table, baseAddr)
	}
	return m, nil
}

// Fetch retrieves and parses the import map at rawurl.
func Fetch(ctx context.Context, client *http.Client, rawurl string) (*Map, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &loader.FetchError{URL: rawurl, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &loader.FetchError{
			URL:        rawurl,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
	}
	base := rawurl
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL.String()
	}
	return Parse(io.LimitReader(resp.Body, maxMapBytes), base)
}

// Resolve maps specifier, imported from importer, to a canonical URL.
// Scopes matching importer are tried first, most specific first, then
// the top-level imports. Specifiers the map does not cover are
// resolved by loader.Resolve.
func (m *Map) Resolve(specifier, importer string) (string, error) {
	key := specifier
	if data.IsRemote(specifier) || data.IsRelative(specifier) || strings.HasPrefix(specifier, "/") {
		if resolved, err := loader.Resolve(specifier, importer); err == nil {
			key = resolved
		}
	}

	for _, scope := range m.scopesFor(importer) {
		if target, ok := lookup(m.Scopes[scope], key); ok {
			return target, nil
		}
	}
	if target, ok := lookup(m.Imports, key); ok {
		return target, nil
	}
	return loader.Resolve(specifier, importer)
}

// URLs lists the distinct remote modules named by exact entries of m,
// sorted. Prefix entries are skipped since they name no module.
func (m *Map) URLs() []string {
	seen := make(map[string]bool)
	add := func(table map[string]string) {
		for k, v := range table {
			if strings.HasSuffix(k, "/") || !data.IsRemote(v) {
				continue
			}
			seen[v] = true
		}
	}
	add(m.Imports)
	for _, table := range m.Scopes {
		add(table)
	}
	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// scopesFor returns the scope prefixes that contain importer, longest
// first.
func (m *Map) scopesFor(importer string) []string {
	var scopes []string
	for scope := range m.Scopes {
		if scope == importer || (strings.HasSuffix(scope, "/") && strings.HasPrefix(importer, scope)) {
			scopes = append(scopes, scope)
		}
	}
	sort.Slice(scopes, func(i, j int) bool {
		return len(scopes[i]) > len(scopes[j])
	})
	return scopes
}

// lookup applies an exact match, then the longest prefix entry whose
// key ends in "/".
func lookup(table map[string]string, key string) (string, bool) {
	if target, ok := table[key]; ok {
		return target, true
	}
	best := ""
	for k := range table {
		if strings.HasSuffix(k, "/") && strings.HasPrefix(key, k) && len(k) > len(best) {
			best = k
		}
	}
	if best == "" {
		return "", false
	}
	target := table[best]
	if !strings.HasSuffix(target, "/") {
		return "", false
	}
	a := data.MakeAddressFromRelative(data.MakeAddress(target), "./"+strings.TrimPrefix(key, best))
	if !a.Remote() {
		return "", false
	}
	return a.Full, true
}

// normalize resolves URL-like keys and all addresses against base,
// dropping entries whose address cannot be made absolute.
func normalize(table map[string]string, base *data.Address) map[string]string {
	out := make(map[string]string, len(table))
	for k, v := range table {
		target, ok := resolveAgainst(base, v)
		if !ok {
			continue
		}
		if resolved, ok := resolveAgainst(base, k); ok {
			k = resolved
		}
		out[k] = target
	}
	return out
}

func resolveAgainst(base *data.Address, ref string) (string, bool) {
	switch {
	case data.IsRemote(ref):
		a := data.MakeAddress(ref)
		if !a.Remote() {
			return "", false
		}
		return a.Full, true
	case data.IsRelative(ref) || strings.HasPrefix(ref, "/"):
		a := data.MakeAddressFromRelative(base, ref)
		if !a.Remote() {
			return "", false
		}
		return a.Full, true
	default:
		return "", false
	}
}
