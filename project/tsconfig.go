// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Path mapping keys pointing URL imports at the cache.
const (
	HTTPKey  = "http://*"
	HTTPSKey = "https://*"
	WebKey   = "web:*"
)

func defaultCompilerOptions() map[string]any {
	return map[string]any{
		"module":                     "ESNext",
		"target":                     "ESNext",
		"moduleResolution":           "Bundler",
		"allowImportingTsExtensions": true,
		"allowArbitraryExtensions":   true,
		"noEmit":                     true,
		"strict":                     true,
		"declaration":                true,
		"isolatedDeclarations":       true,
		"verbatimModuleSyntax":       true,
		"skipDefaultLibCheck":        true,
		"resolveJsonModule":          true,
		"paths":                      map[string]any{},
	}
}

// EnsureCompilerPaths makes the compiler config at tsconfigPath map
// http, https and web: imports into cacheDir. A missing config is
// created with defaults. When all three mappings already exist the
// file is left alone unless force is set. It reports whether the file
// was written.
func EnsureCompilerPaths(tsconfigPath, cacheDir, cwd string, force bool) (bool, error) {
	config, err := readConfig(tsconfigPath)
	if err != nil {
		return false, err
	}
	options, ok := config["compilerOptions"].(map[string]any)
	if !ok {
		options = map[string]any{}
		config["compilerOptions"] = options
	}
	paths, ok := options["paths"].(map[string]any)
	if !ok {
		paths = map[string]any{}
		options["paths"] = paths
	}

	_, hasHTTP := paths[HTTPKey]
	_, hasHTTPS := paths[HTTPSKey]
	_, hasWeb := paths[WebKey]
	if hasHTTP && hasHTTPS && hasWeb && !force {
		return false, nil
	}

	dir := relativeTo(cacheDir, cwd)
	httpPath := dir + "/http/*"
	httpsPath := dir + "/https/*"
	paths[HTTPKey] = []string{httpPath}
	paths[HTTPSKey] = []string{httpsPath}
	paths[WebKey] = []string{httpPath, httpsPath}

	b, err := json.MarshalIndent(config, "", "    ")
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(tsconfigPath, b, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func readConfig(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{"compilerOptions": defaultCompilerOptions()}, nil
	}
	if err != nil {
		return nil, err
	}
	config := map[string]any{}
	if err := json.Unmarshal(b, &config); err != nil {
		return nil, fmt.Errorf("compiler config %s: %w", path, err)
	}
	return config, nil
}

// relativeTo rewrites dir as "./..." when it lies inside cwd, with
// forward slashes either way.
func relativeTo(dir, cwd string) string {
	if rel, err := filepath.Rel(cwd, dir); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "./" + filepath.ToSlash(rel)
	}
	return filepath.ToSlash(dir)
}
