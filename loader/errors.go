// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrBlocked reports a URL disallowed by its host's robots.txt.
	ErrBlocked = errors.New("blocked by robots.txt")
	// ErrBodyTooLarge reports a response over Loader.MaxBodyBytes.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrNotRemote reports a specifier this package does not resolve.
	ErrNotRemote = errors.New("not a remote module specifier")
	// ErrNotStarted reports use of a Loader before Start.
	ErrNotStarted = errors.New("loader not started")
)

// FetchError is returned when a URL cannot be retrieved: a transport
// failure, a non-2xx status or a robots.txt block. It is never
// retried.
type FetchError struct {
	URL        string
	Status     int
	StatusText string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("failed to load module '%s': %d %s", e.URL, e.Status, e.StatusText)
	case e.StatusText != "":
		return fmt.Sprintf("failed to load module '%s': %s", e.URL, e.StatusText)
	default:
		return fmt.Sprintf("failed to load module '%s': %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError is returned when a response declared as JSON is not.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode json from '%s': %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PersistenceError is returned when an artifact or metadata record
// cannot be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
