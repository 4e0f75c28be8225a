// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package project wires a working directory up to the module cache:
// the status file recording an initialised root, compiler path
// mappings for URL imports, and the link from a local root to the
// global one.
package project

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/benjaminestes/webimport/version"
)

// StatusSuccess marks a root that finished initialising.
const StatusSuccess = "success"

// Status is the record written to a root's status file by init.
type Status struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
	RootPath  string `json:"rootPath"`
	CachePath string `json:"cachePath"`
	MetaPath  string `json:"metaPath"`
}

// NewStatus returns a successful Status stamped with now.
func NewStatus(root, cache, meta string, now time.Time) Status {
	return Status{
		Status:    StatusSuccess,
		Version:   version.Version,
		Timestamp: now.UnixMilli(),
		Date:      now.UTC().Format(http.TimeFormat),
		RootPath:  root,
		CachePath: cache,
		MetaPath:  meta,
	}
}

// WriteStatus writes s to path, creating its directory.
func WriteStatus(path string, s Status) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ReadStatus reads the status file at path. A root without one has
// not been initialised.
func ReadStatus(path string) (*Status, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Status
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("status file %s: %w", path, err)
	}
	return &s, nil
}
