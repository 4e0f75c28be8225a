// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package loader

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// response is a fully read HTTP response.
type response struct {
	// URL is the address the body was finally served from.
	URL         string
	Redirected  bool
	StatusCode  int
	ContentType string
	Header      http.Header
	Body        []byte
}

// fetch issues a GET for rawurl and reads the whole body. Any failure,
// including a non-2xx status, is a *FetchError.
func (l *Loader) fetch(ctx context.Context, rawurl string) (*response, error) {
	if l.RespectRobots && !l.allowed(ctx, rawurl) {
		return nil, &FetchError{URL: rawurl, StatusText: "Blocked by robots.txt", Err: ErrBlocked}
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: rawurl, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, &FetchError{URL: rawurl, Err: err}
	}
	req.Header.Set("User-Agent", l.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range l.Header {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawurl, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        rawurl,
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Err:        fmt.Errorf("http %d", resp.StatusCode),
		}
	}

	body, err := readBody(resp, l.MaxBodyBytes)
	if err != nil {
		return nil, &FetchError{URL: rawurl, Err: err}
	}

	final := req.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &response{
		URL:         final,
		Redirected:  final != req.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header.Clone(),
		Body:        body,
	}, nil
}

// statusText strips the numeric code from resp.Status.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func readBody(resp *http.Response, limit int64) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate decode: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	body, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}
