// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benjaminestes/webimport/cachepath"
	"github.com/benjaminestes/webimport/loader/data"
)

// A Session is the set of declaration URLs already crawled. Every URL
// in it is crawled at most once, no matter how many loads or crawls
// share the session.
type Session struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewSession() *Session {
	return &Session{seen: make(map[string]bool)}
}

// visit marks rawurl as seen and reports whether it was new.
func (s *Session) visit(rawurl string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[rawurl] {
		return false
	}
	s.seen[rawurl] = true
	return true
}

// Seen reports whether rawurl has been crawled in s.
func (s *Session) Seen(rawurl string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[rawurl]
}

// Len is the number of URLs crawled in s.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// crawl walks the declaration graph rooted at rawurl depth first. The
// stack replaces recursion so deep graphs cannot exhaust the
// goroutine stack; references are pushed in reverse so files are
// still visited in the order they are referenced.
func (l *Loader) crawl(ctx context.Context, session *Session, rawurl string) error {
	root := data.MakeAddress(rawurl)
	if !root.Remote() {
		return &FetchError{URL: rawurl, Err: fmt.Errorf("%w: %s", ErrNotRemote, rawurl)}
	}
	stack := []*data.Address{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !session.visit(next.Full) {
			continue
		}
		refs, err := l.fetchTypes(ctx, next)
		if err != nil {
			return err
		}
		for i := len(refs) - 1; i >= 0; i-- {
			stack = append(stack, refs[i])
		}
	}
	return nil
}

// fetchTypes caches one declaration file and returns the relative
// references it makes, resolved against its URL.
func (l *Loader) fetchTypes(ctx context.Context, addr *data.Address) ([]*data.Address, error) {
	resp, err := l.fetch(ctx, addr.Full)
	if err != nil {
		return nil, err
	}
	path := cachepath.For(addr.URL(), l.CacheDir)
	if _, err := l.persist(ctx, path, resp.Body); err != nil {
		return nil, err
	}
	l.Logger.Debug("cached declaration", "url", addr.Full, "path", path)

	var refs []*data.Address
	var imports []string
	for _, spec := range absolute(addr, l.Scanner.Scan(resp.Body), data.IsRelative) {
		refs = append(refs, data.MakeAddress(spec))
		imports = append(imports, spec)
	}
	if imports == nil {
		imports = []string{}
	}

	ext := cachepath.FromPath(addr.Path)
	m := &data.Meta{
		URL:       addr.Full,
		Extension: ext,
		Kind:      data.KindDeclaration,
		Imports:   imports,
		Path:      path,
		Time:      time.Now(),
		TTL:       data.DurationFrom(l.TTL),
	}
	if err := l.meta.Write(m.URL, m); err != nil {
		return nil, &PersistenceError{Path: l.meta.PathFor(m.URL), Err: err}
	}
	return refs, nil
}
