// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package cache persists artifacts under the cache root. A path is
// written at most once: when a file already exists its contents win
// and the new contents are discarded.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Mirror receives every artifact freshly written by a Writer.
type Mirror interface {
	Put(ctx context.Context, key string, content []byte) error
}

// Writer implements write-if-absent persistence under Root.
type Writer struct {
	Root   string
	Mirror Mirror
	Logger *log.Logger
}

// NewWriter returns a Writer for root. mirror may be nil.
func NewWriter(root string, mirror Mirror, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Writer{Root: root, Mirror: mirror, Logger: logger}
}

// Persist returns the contents already stored at path, if any.
// Otherwise it creates the parent directories, writes contents and
// returns them.
func (w *Writer) Persist(ctx context.Context, path string, contents []byte) ([]byte, error) {
	existing, err := os.ReadFile(path)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		// A directory sits where the artifact should be, or the file
		// is unreadable. Either way it cannot be written over.
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := writeFile(path, contents); err != nil {
		return nil, err
	}
	w.mirror(ctx, path, contents)
	return contents, nil
}

func (w *Writer) mirror(ctx context.Context, path string, contents []byte) {
	if w.Mirror == nil {
		return
	}
	key, err := filepath.Rel(w.Root, path)
	if err != nil {
		w.logger().Warn("artifact outside cache root, not mirrored", "path", path)
		return
	}
	if err := w.Mirror.Put(ctx, filepath.ToSlash(key), contents); err != nil {
		w.logger().Warn("mirror upload failed", "key", key, "err", err)
	}
}

func (w *Writer) logger() *log.Logger {
	if w.Logger == nil {
		w.Logger = log.New(io.Discard)
	}
	return w.Logger
}

// writeFile writes through a temporary file in the same directory and
// renames it into place, so readers never see a partial artifact.
func writeFile(path string, contents []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
