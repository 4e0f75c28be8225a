// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package loader

import (
	"context"
	"net/http"

	"github.com/benjaminestes/robots/v2"
)

// allowed reports whether the robots.txt governing rawurl lets
// RobotsUserAgent fetch it. Testers are cached per robots.txt URL.
func (l *Loader) allowed(ctx context.Context, rawurl string) bool {
	rtxtURL, err := robots.Locate(rawurl)
	if err != nil {
		// Couldn't parse URL. The fetch itself will report it.
		return true
	}
	test, ok := l.robots.Get(rtxtURL)
	if !ok {
		test = l.fetchRobots(ctx, rtxtURL)
		l.robots.Add(rtxtURL, test)
	}
	return test(rawurl)
}

// fetchRobots creates a robots.txt matcher from its URL. If there is
// a problem reading robots.txt, treat it as a server error.
func (l *Loader) fetchRobots(ctx context.Context, rtxtURL string) func(string) bool {
	unavailable := func() func(string) bool {
		rtxt, _ := robots.From(http.StatusServiceUnavailable, nil)
		return rtxt.Tester(l.RobotsUserAgent)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rtxtURL, nil)
	if err != nil {
		return unavailable()
	}
	req.Header.Set("User-Agent", l.UserAgent)
	resp, err := l.client.Do(req)
	if err != nil {
		return unavailable()
	}
	defer resp.Body.Close()

	rtxt, err := robots.From(resp.StatusCode, resp.Body)
	if err != nil {
		return unavailable()
	}
	return rtxt.Tester(l.RobotsUserAgent)
}
