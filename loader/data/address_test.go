// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package data

import "testing"

func TestMakeAddress(t *testing.T) {
	a := MakeAddress("https://example.com:8080/a/b.ts?x=1#frag")
	if a == nil {
		t.Fatalf("expected address")
	}
	if a.Scheme != "https" || a.Hostname != "example.com" || a.Port != "8080" {
		t.Errorf("unexpected parts: %+v", a)
	}
	if a.Path != "/a/b.ts" || a.Query != "x=1" {
		t.Errorf("unexpected path or query: %+v", a)
	}
	if a.Full != "https://example.com:8080/a/b.ts?x=1#frag" {
		t.Errorf("fragment should survive, got %s", a.Full)
	}
}

func TestMakeAddressEmptyPath(t *testing.T) {
	a := MakeAddress("https://example.com")
	if a.Full != "https://example.com/" {
		t.Errorf("expected trailing slash, got %s", a.Full)
	}
}

func TestMakeAddressFromRelative(t *testing.T) {
	base := MakeAddress("https://example.com/pkg/v1/index.d.ts")
	tests := []struct {
		ref  string
		want string
	}{
		{"./types.d.ts", "https://example.com/pkg/v1/types.d.ts"},
		{"../shared.d.ts", "https://example.com/pkg/shared.d.ts"},
		{"/root.d.ts", "https://example.com/root.d.ts"},
		{"https://other.test/x.js", "https://other.test/x.js"},
	}
	for _, tt := range tests {
		got := MakeAddressFromRelative(base, tt.ref)
		if got == nil || got.Full != tt.want {
			t.Errorf("resolve %q: expected %s, got %v", tt.ref, tt.want, got)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]ContentKind{
		".json":  KindJSON,
		".d.ts":  KindDeclaration,
		".d.mts": KindDeclaration,
		".d.cts": KindDeclaration,
		".txt":   KindText,
		".html":  KindMarkup,
		".ts":    KindScript,
		".js":    KindScript,
	}
	for ext, want := range tests {
		if got := KindOf(ext); got != want {
			t.Errorf("KindOf(%q) = %s, want %s", ext, got, want)
		}
	}
}
