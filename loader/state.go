// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/benjaminestes/webimport/cachepath"
	"github.com/benjaminestes/webimport/loader/data"
	"github.com/benjaminestes/webimport/scan"
)

// TypesHeader names the declaration file of a module, relative to the
// module's URL.
const TypesHeader = "X-TypeScript-Types"

// A loadfn represents a state of the load state machine. Its return
// value is the next state.
type loadfn func(*load) loadfn

// load is the state of loading a single URL.
type load struct {
	l   *Loader
	ctx context.Context

	// requested is the URL the host asked for. addr starts equal to
	// it and becomes the final URL if the response was redirected.
	requested      *data.Address
	addr           *data.Address
	redirectedFrom *data.Address

	resp   *response
	path   string
	types  string
	result *data.LoadResult
	err    error
}

func (l *Loader) load(ctx context.Context, rawurl string) (*data.LoadResult, error) {
	addr := data.MakeAddress(rawurl)
	if !addr.Remote() {
		return nil, &FetchError{URL: rawurl, Err: fmt.Errorf("%w: %s", ErrNotRemote, rawurl)}
	}
	s := &load{l: l, ctx: ctx, requested: addr, addr: addr}
	for f := loadStart; f != nil; f = f(s) {
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *load) fail(err error) loadfn {
	s.err = err
	return nil
}

// loadStart consults the metadata left by a previous load. It is
// informational only and never short-circuits the fetch.
func loadStart(s *load) loadfn {
	if prev, ok := s.l.meta.Read(s.requested.Full); ok {
		s.l.Logger.Debug("previously loaded", "url", prev.URL, "at", prev.Time)
	}
	return loadFetch
}

// loadFetch performs the network request. Non-2xx responses are
// fatal for this URL.
func loadFetch(s *load) loadfn {
	resp, err := s.l.fetch(s.ctx, s.requested.Full)
	if err != nil {
		return s.fail(err)
	}
	s.resp = resp
	return loadRedirect
}

// loadRedirect switches addr to the final URL if the response was
// served after a redirect.
func loadRedirect(s *load) loadfn {
	if s.resp.Redirected {
		final := data.MakeAddress(s.resp.URL)
		if final == nil {
			return s.fail(&FetchError{URL: s.requested.Full, Err: fmt.Errorf("unparseable redirect target %q", s.resp.URL)})
		}
		s.redirectedFrom = s.requested
		s.addr = final
	}
	return loadBranch
}

// loadBranch picks how the response is persisted.
func loadBranch(s *load) loadfn {
	switch {
	case isJSON(s.resp.ContentType):
		return loadJSON
	case s.redirectedFrom != nil:
		return loadRedirectStub
	case s.resp.Header.Get(TypesHeader) != "":
		return loadTypes
	default:
		return loadModule
	}
}

// loadJSON wraps a JSON document as a module whose default export is
// the document, so it can be imported as code.
func loadJSON(s *load) loadfn {
	var compact bytes.Buffer
	if err := json.Compact(&compact, s.resp.Body); err != nil {
		return s.fail(&DecodeError{URL: s.addr.Full, Err: err})
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact.Bytes(), "", "    "); err != nil {
		return s.fail(&DecodeError{URL: s.addr.Full, Err: err})
	}
	contents := append([]byte("export default "), pretty.Bytes()...)

	origin := s.addr
	if s.redirectedFrom != nil {
		origin = s.redirectedFrom
	}
	s.path = s.l.pathFor(origin)
	stored, err := s.l.persist(s.ctx, s.path, contents)
	if err != nil {
		return s.fail(err)
	}
	s.result = &data.LoadResult{URL: s.requested.Full, Path: s.path, Contents: stored, Kind: data.KindScript}
	return loadMeta
}

// loadRedirectStub writes, at the original URL's path, a module that
// re-exports the final URL instead of duplicating its content.
func loadRedirectStub(s *load) loadfn {
	contents := []byte("export * from '" + s.addr.Full + "'")
	s.path = s.l.pathFor(s.redirectedFrom)
	stored, err := s.l.persist(s.ctx, s.path, contents)
	if err != nil {
		return s.fail(err)
	}
	s.result = &data.LoadResult{URL: s.requested.Full, Path: s.path, Contents: stored, Kind: data.KindScript}
	return loadMeta
}

// loadTypes crawls the declaration file advertised by the response
// and writes a companion declaration next to the module that
// re-exports it.
func loadTypes(s *load) loadfn {
	header := s.resp.Header.Get(TypesHeader)
	types := data.MakeAddressFromRelative(s.addr, header)
	if !types.Remote() {
		s.l.Logger.Warn("ignoring unresolvable types header", "url", s.addr.Full, "header", header)
		return loadModule
	}
	if err := s.l.crawl(s.ctx, s.l.session, types.Full); err != nil {
		return s.fail(err)
	}

	modulePath := s.l.pathFor(s.addr)
	typesPath := s.l.pathFor(types)
	stubPath := cachepath.Replace(modulePath, cachepath.FromPath(types.Path))
	if _, err := s.l.persist(s.ctx, stubPath, []byte("export * from '"+typesPath+"'")); err != nil {
		return s.fail(err)
	}
	s.types = types.Full
	s.l.Logger.Debug("cached types stub", "path", stubPath)
	return loadModule
}

// loadModule persists the raw response bytes at the module's path.
func loadModule(s *load) loadfn {
	s.path = s.l.pathFor(s.addr)
	if _, err := s.l.persist(s.ctx, s.path, s.resp.Body); err != nil {
		return s.fail(err)
	}
	s.l.Logger.Debug("cached module", "path", s.path)
	s.result = &data.LoadResult{URL: s.requested.Full, Path: s.path, Contents: s.resp.Body, Kind: data.KindScript}
	return loadMeta
}

// loadMeta records what was learned about the requested URL.
func loadMeta(s *load) loadfn {
	ext := cachepath.FromPath(s.path)
	m := &data.Meta{
		URL:       s.requested.Full,
		Extension: ext,
		Kind:      data.KindOf(ext),
		Imports:   s.imports(),
		Types:     s.types,
		Path:      s.path,
		Time:      time.Now(),
		TTL:       data.DurationFrom(s.l.TTL),
	}
	if err := s.l.meta.Write(m.URL, m); err != nil {
		return s.fail(&PersistenceError{Path: s.l.meta.PathFor(m.URL), Err: err})
	}
	return nil
}

// imports lists the absolute URLs the response refers to.
func (s *load) imports() []string {
	switch {
	case s.redirectedFrom != nil && !isJSON(s.resp.ContentType):
		return []string{s.addr.Full}
	case isJSON(s.resp.ContentType):
		return []string{}
	}

	var scanner scan.Scanner
	switch data.KindOf(cachepath.FromContentType(s.resp.ContentType)) {
	case data.KindMarkup:
		scanner = scan.Markup{}
	case data.KindText:
		return []string{}
	default:
		scanner = s.l.Scanner
	}
	return absolute(s.addr, scanner.Scan(s.resp.Body), func(spec string) bool {
		return data.IsRemote(spec) || data.IsRelative(spec) || strings.HasPrefix(spec, "/")
	})
}

// absolute resolves the specifiers accepted by keep against base,
// dropping duplicates and anything that does not resolve to a remote
// URL.
func absolute(base *data.Address, specs []string, keep func(string) bool) []string {
	seen := make(map[string]bool, len(specs))
	out := make([]string, 0, len(specs))
	for _, spec := range specs {
		if !keep(spec) {
			continue
		}
		a := data.MakeAddressFromRelative(base, spec)
		if !a.Remote() || seen[a.Full] {
			continue
		}
		seen[a.Full] = true
		out = append(out, a.Full)
	}
	return out
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
	}
	return mediaType == "application/json"
}

// pathFor is the cache path of a, extension included.
func (l *Loader) pathFor(a *data.Address) string {
	u := a.URL()
	return cachepath.Ensure(cachepath.For(u, l.CacheDir), u)
}

func (l *Loader) persist(ctx context.Context, path string, contents []byte) ([]byte, error) {
	stored, err := l.writer.Persist(ctx, path, contents)
	if err != nil {
		var perr *PersistenceError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, &PersistenceError{Path: path, Err: err}
	}
	return stored, nil
}
