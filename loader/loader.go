// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package loader fetches remote modules, persists them in a local
// cache and crawls their type declarations, so a toolchain can treat
// code addressed by URL as local source.
package loader

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/benjaminestes/webimport/cache"
	"github.com/benjaminestes/webimport/loader/data"
	"github.com/benjaminestes/webimport/metastore"
	"github.com/benjaminestes/webimport/scan"
	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const robotsCacheSize = 256

type Loader struct {
	// Exported configuration fields.
	CacheDir        string
	MetaDir         string
	UserAgent       string
	RobotsUserAgent string
	RespectRobots   bool
	Header          map[string]string
	Timeout         time.Duration
	WaitTime        time.Duration
	MaxBodyBytes    int64
	MaxRedirects    int
	TTL             time.Duration

	Logger *log.Logger
	// Mirror, if set, receives every freshly cached artifact.
	Mirror cache.Mirror
	// Scanner extracts specifiers from declaration files and scripts.
	Scanner scan.Scanner
	// Client replaces the HTTP client built by Start.
	Client *http.Client

	client *http.Client

	// limiter spaces requests at least WaitTime apart.
	limiter *rate.Limiter

	// robots maintains a robots.txt matcher for every encountered
	// domain
	robots *lru.Cache[string, func(string) bool]

	writer *cache.Writer
	meta   *metastore.Store

	// session is the process-wide visited set used when a caller
	// does not bring its own.
	session *Session

	// loads collapses concurrent loads of the same URL into one
	// fetch.
	loads singleflight.Group

	started bool
}

var _ ModuleLoader = (*Loader)(nil)

// initializedClient creates an http.Client that follows at most
// MaxRedirects redirects.
func initializedClient(l *Loader) *http.Client {
	return &http.Client{
		Timeout: l.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= l.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return nil
		},
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Start validates the configuration and prepares l for use. If Start
// returns a non-nil error, calls to Load and Crawl will fail.
func (l *Loader) Start() error {
	if err := l.validate(); err != nil {
		return err
	}
	l.setDefaults()

	robots, err := lru.New[string, func(string) bool](robotsCacheSize)
	if err != nil {
		return err
	}

	l.client = l.Client
	if l.client == nil {
		l.client = initializedClient(l)
	}
	l.limiter = rate.NewLimiter(rate.Inf, 0)
	if l.WaitTime > 0 {
		l.limiter = rate.NewLimiter(rate.Every(l.WaitTime), 1)
	}
	l.robots = robots
	l.writer = cache.NewWriter(l.CacheDir, l.Mirror, l.Logger)
	l.meta = metastore.New(l.MetaDir)
	l.session = NewSession()
	l.started = true
	return nil
}

// Load fetches rawurl, persists it under CacheDir and returns the
// contents the host should compile. Concurrent calls for the same URL
// share one fetch. The shared fetch is detached from any single
// caller's cancellation; requests are still bounded by Timeout. A
// caller whose ctx ends stops waiting and gets ctx.Err().
func (l *Loader) Load(ctx context.Context, rawurl string) (*data.LoadResult, error) {
	if !l.started {
		return nil, ErrNotStarted
	}
	ch := l.loads.DoChan(rawurl, func() (any, error) {
		return l.load(context.WithoutCancel(ctx), rawurl)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*data.LoadResult), nil
	}
}

// Crawl ensures the declaration file at rawurl and every declaration
// it transitively references are cached. A nil session uses the
// loader's process-wide one.
func (l *Loader) Crawl(ctx context.Context, session *Session, rawurl string) error {
	if !l.started {
		return ErrNotStarted
	}
	if session == nil {
		session = l.session
	}
	return l.crawl(ctx, session, rawurl)
}

// Meta returns the metadata recorded for rawurl, if any.
func (l *Loader) Meta(rawurl string) (*data.Meta, bool) {
	if !l.started {
		return nil, false
	}
	return l.meta.Read(rawurl)
}

// Store exposes the metadata store, for listing and staleness
// reports.
func (l *Loader) Store() *metastore.Store {
	return l.meta
}
