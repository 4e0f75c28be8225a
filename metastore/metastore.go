// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package metastore keeps one JSON record per loaded URL, named by
// the SHA-256 of the URL string.
package metastore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/benjaminestes/webimport/loader/data"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	recentSize = 256
	recentTTL  = time.Minute
)

// Store reads and writes metadata records under Dir.
type Store struct {
	Dir string

	// recent caches records this process has read or written, so a
	// burst of loads does not reparse the same files.
	recent *expirable.LRU[string, data.Meta]
}

func New(dir string) *Store {
	return &Store{
		Dir:    dir,
		recent: expirable.NewLRU[string, data.Meta](recentSize, nil, recentTTL),
	}
}

// PathFor returns the file holding rawurl's record.
func (s *Store) PathFor(rawurl string) string {
	sum := sha256.Sum256([]byte(rawurl))
	return filepath.Join(s.Dir, hex.EncodeToString(sum[:])+".json")
}

// Read returns the record for rawurl. Any failure, including a missing
// or corrupt file, reads as no record.
func (s *Store) Read(rawurl string) (*data.Meta, bool) {
	if m, ok := s.recent.Get(rawurl); ok {
		return &m, true
	}
	m, err := readFile(s.PathFor(rawurl))
	if err != nil {
		return nil, false
	}
	s.recent.Add(rawurl, *m)
	return m, true
}

// Write replaces the record for rawurl.
func (s *Store) Write(rawurl string, m *data.Meta) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	path := s.PathFor(rawurl)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	_, err = tmp.Write(raw)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	s.recent.Add(rawurl, *m)
	return nil
}

// List returns every readable record, ordered by URL. Corrupt files
// are skipped and reported through bad.
func (s *Store) List() (records []*data.Meta, bad []string, err error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.Dir, e.Name())
		m, err := readFile(path)
		if err != nil {
			bad = append(bad, path)
			continue
		}
		records = append(records, m)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].URL < records[j].URL
	})
	return records, bad, nil
}

// Stale returns the records whose ttl has elapsed at now.
func (s *Store) Stale(now time.Time) ([]*data.Meta, error) {
	records, _, err := s.List()
	if err != nil {
		return nil, err
	}
	var stale []*data.Meta
	for _, m := range records {
		if m.Expired(now) {
			stale = append(stale, m)
		}
	}
	return stale, nil
}

func readFile(path string) (*data.Meta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m data.Meta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m.URL == "" {
		return nil, fs.ErrInvalid
	}
	return &m, nil
}
