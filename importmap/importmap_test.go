// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package importmap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/benjaminestes/webimport/loader"
)

const base = "https://app.example.com/import_map.json"

func parseTestMap(t *testing.T) *Map {
	t.Helper()
	f, err := os.Open("testdata/import_map.json")
	if err != nil {
		t.Fatalf("couldn't open import_map.json for reading")
	}
	defer f.Close()
	m, err := Parse(f, base)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return m
}

func TestResolve(t *testing.T) {
	m := parseTestMap(t)
	tests := []struct {
		specifier string
		importer  string
		expected  string
	}{
		{"preact", "https://app.example.com/main.ts", "https://esm.sh/preact@10.19.2"},
		{"preact/hooks", "https://app.example.com/main.ts", "https://esm.sh/preact@10.19.2/hooks"},
		{"utils", "https://app.example.com/main.ts", "https://app.example.com/lib/utils.ts"},
		{"https://deno.land/std/path/mod.ts", "https://app.example.com/main.ts", "https://deno.land/std@0.208.0/path/mod.ts"},
		{"preact", "https://esm.sh/stable/mod.js", "https://esm.sh/preact@10.5.0"},
		{"preact/hooks", "https://esm.sh/stable/mod.js", "https://esm.sh/preact@10.19.2/hooks"},
		{"utils", "https://app.example.com/legacy/a.js", "https://app.example.com/legacy/utils.js"},
		{"./b.ts", "https://app.example.com/a/c.ts", "https://app.example.com/a/b.ts"},
	}
	for _, test := range tests {
		got, err := m.Resolve(test.specifier, test.importer)
		if err != nil {
			t.Errorf("%s from %s: %v", test.specifier, test.importer, err)
			continue
		}
		if got != test.expected {
			t.Errorf("%s from %s: expected %s, got %s", test.specifier, test.importer, test.expected, got)
		}
	}
}

func TestResolveUnmapped(t *testing.T) {
	m := parseTestMap(t)
	_, err := m.Resolve("lodash", "https://app.example.com/main.ts")
	if !errors.Is(err, loader.ErrNotRemote) {
		t.Errorf("expected ErrNotRemote, got %v", err)
	}
}

func TestURLs(t *testing.T) {
	m := parseTestMap(t)
	expected := []string{
		"https://app.example.com/legacy/utils.js",
		"https://app.example.com/lib/utils.ts",
		"https://esm.sh/preact@10.19.2",
		"https://esm.sh/preact@10.5.0",
	}
	urls := m.URLs()
	if len(urls) != len(expected) {
		t.Fatalf("expected %d URLs, got %d: %v", len(expected), len(urls), urls)
	}
	for i := range expected {
		if urls[i] != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], urls[i])
		}
	}
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := os.ReadFile("testdata/import_map.json")
		if err != nil {
			t.Errorf("couldn't read import_map.json")
		}
		fmt.Fprintf(w, "%s", data)
	}))
	defer ts.Close()

	m, err := Fetch(context.Background(), ts.Client(), ts.URL+"/import_map.json")
	if err != nil {
		t.Fatalf("couldn't retrieve test import map: %v", err)
	}
	got, err := m.Resolve("utils", ts.URL+"/main.ts")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if got != ts.URL+"/lib/utils.ts" {
		t.Errorf("expected address relative to the map, got %s", got)
	}
}

func TestFetchNotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := Fetch(context.Background(), ts.Client(), ts.URL+"/import_map.json")
	var ferr *loader.FetchError
	if !errors.As(err, &ferr) || ferr.Status != http.StatusNotFound {
		t.Errorf("expected 404 FetchError, got %v", err)
	}
}

func TestInvalidData(t *testing.T) {
	f, err := os.Open("testdata/ill_formed.json")
	if err != nil {
		t.Fatalf("couldn't open test data")
	}
	defer f.Close()

	if _, err := Parse(f, base); err == nil {
		t.Errorf("ill formed import map should trigger error")
	}
}
