// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package scan

import (
	"os"
	"reflect"
	"testing"
)

func TestLexical(t *testing.T) {
	src, err := os.ReadFile("testdata/index.d.ts")
	if err != nil {
		t.Fatalf("couldn't open test data")
	}

	got := Lexical{}.Scan(src)
	want := []string{
		"./globals.d.ts",
		"./options.d.ts",
		"../shared/helper.d.ts",
		"./util.d.ts",
		"./reexport.d.ts",
		"./namespace.d.ts",
		"./result.d.ts",
		"./options.d.ts",
		"./side-effect.d.ts",
		"https://cdn.example.com/external.d.ts",
		"bare-package",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestLexicalMultiline(t *testing.T) {
	src := []byte("import {\n  a,\n  b,\n} from './multi.d.ts'\nexport {\n  c\n} from \"./c.d.ts\"")
	got := Lexical{}.Scan(src)
	want := []string{"./multi.d.ts", "./c.d.ts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLexicalNothing(t *testing.T) {
	if got := (Lexical{}).Scan([]byte("export declare const x: number;")); len(got) != 0 {
		t.Errorf("expected no specifiers, got %q", got)
	}
}

func TestMarkup(t *testing.T) {
	src, err := os.ReadFile("testdata/page.html")
	if err != nil {
		t.Fatalf("couldn't open test data")
	}

	got := Markup{}.Scan(src)
	want := []string{
		"/vendor/preact.js",
		"./app.js",
		"https://esm.sh/preact@10",
		"./boot.ts",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected\n%q\ngot\n%q", want, got)
	}
}
