// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package data

import (
	"net/url"
	"strings"
)

// Address is a parsed canonical URL. Full is the string form and the
// identity of the artifact it names.
type Address struct {
	Full     string
	Scheme   string
	Host     string
	Hostname string
	Port     string
	Path     string
	Query    string
}

func (a *Address) String() string {
	return a.Full
}

// URL returns a fresh *url.URL for a. It returns nil if Full no longer
// parses, which cannot happen for an Address built by this package.
func (a *Address) URL() *url.URL {
	u, err := url.Parse(a.Full)
	if err != nil {
		return nil
	}
	return u
}

// Remote reports whether a is an http or https URL with a host.
func (a *Address) Remote() bool {
	return a != nil && (a.Scheme == "http" || a.Scheme == "https") && a.Host != ""
}

// MakeAddress parses addr. It returns nil if addr is not a valid URL.
func MakeAddress(addr string) *Address {
	u, err := url.Parse(addr)
	if err != nil {
		return nil
	}
	return addressFromURL(u)
}

func addressFromURL(u *url.URL) *Address {
	// Per RFC 1945, a request without a path part must send a "/".
	if u.Path == "" && u.Opaque == "" && u.Host != "" {
		u.Path = "/"
	}
	return &Address{
		Full:     u.String(),
		Scheme:   u.Scheme,
		Host:     u.Host,
		Hostname: u.Hostname(),
		Port:     u.Port(),
		Path:     u.EscapedPath(),
		Query:    u.RawQuery,
	}
}

// MakeAddressFromRelative resolves addr against base. It returns nil if
// either cannot be parsed.
func MakeAddressFromRelative(base *Address, addr string) *Address {
	if base == nil {
		return nil
	}
	ref, err := url.Parse(addr)
	if err != nil {
		return nil
	}
	t := base.URL()
	if t == nil {
		return nil
	}
	return addressFromURL(t.ResolveReference(ref))
}

// IsRemote reports whether s looks like an http or https URL.
func IsRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsRelative reports whether s is a relative reference of the form
// "./x" or "../x".
func IsRelative(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../")
}
