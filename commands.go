// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benjaminestes/webimport/config"
	"github.com/benjaminestes/webimport/importmap"
	"github.com/benjaminestes/webimport/loader"
	"github.com/benjaminestes/webimport/loader/data"
	"github.com/benjaminestes/webimport/project"
	"github.com/benjaminestes/webimport/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	importMapPath string
	force         bool
)

var loadCmd = &cobra.Command{
	Use:   "load [URL...]",
	Short: "Load modules into the cache; URLs are read from stdin when none are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if len(urls) == 0 {
			urls = listFromReader(cmd.InOrStdin())
		}
		if len(urls) == 0 {
			return fmt.Errorf("expected at least one URL")
		}
		l, err := newLoader()
		if err != nil {
			return err
		}
		return loadAll(cmd.Context(), l, urls, cmd.OutOrStdout(), logger)
	},
}

var typesCmd = &cobra.Command{
	Use:   "types URL...",
	Short: "Cache declaration files and everything they reference",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader()
		if err != nil {
			return err
		}
		session := loader.NewSession()
		for _, u := range args {
			if err := l.Crawl(cmd.Context(), session, u); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d declaration files\n", session.Len())
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve SPECIFIER IMPORTER",
	Short: "Print the URL a specifier resolves to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r loader.Resolver = loader.Relative{}
		if importMapPath != "" {
			m, err := openImportMap(cmd, importMapPath)
			if err != nil {
				return err
			}
			r = m
		}
		u, err := r.Resolve(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

var prefetchCmd = &cobra.Command{
	Use:   "prefetch",
	Short: "Load every module named by an import map",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importMapPath == "" {
			return fmt.Errorf("--import-map is required")
		}
		m, err := openImportMap(cmd, importMapPath)
		if err != nil {
			return err
		}
		urls := m.URLs()
		if len(urls) == 0 {
			logger.Warn("import map names no remote modules", "map", importMapPath)
			return nil
		}
		l, err := newLoader()
		if err != nil {
			return err
		}
		return loadAll(cmd.Context(), l, urls, cmd.OutOrStdout(), logger)
	},
}

var metaCmd = &cobra.Command{
	Use:   "meta URL",
	Short: "Print the metadata recorded for a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader()
		if err != nil {
			return err
		}
		m, ok := l.Meta(args[0])
		if !ok {
			return fmt.Errorf("no metadata for %s", args[0])
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(m)
	},
}

var staleCmd = &cobra.Command{
	Use:   "stale",
	Short: "List metadata records older than their ttl",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader()
		if err != nil {
			return err
		}
		now := time.Now()
		records, err := l.Store().Stale(now)
		if err != nil {
			return err
		}
		for _, m := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.URL, now.Sub(m.Time).Round(time.Second))
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Map URL imports in tsconfig.json to the cache and record the root",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		for _, dir := range []string{cfg.CacheDir(), cfg.MetaDir()} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		tsconfig := filepath.Join(cwd, "tsconfig.json")
		written, err := project.EnsureCompilerPaths(tsconfig, cfg.CacheDir(), cwd, force)
		if err != nil {
			return err
		}
		if written {
			logger.Info("updated compiler paths", "file", tsconfig)
		}
		status := project.NewStatus(cfg.Root, cfg.CacheDir(), cfg.MetaDir(), time.Now())
		if err := project.WriteStatus(cfg.StatusFile(), status); err != nil {
			return err
		}
		logger.Info("initialized", "mode", cfg.Mode, "root", cfg.Root, "version", version.Version)
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link the global root into the working directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		global := filepath.Join(home, config.RootName)
		local := filepath.Join(cwd, config.RootName)
		if err := project.Link(global, local); err != nil {
			return err
		}
		logger.Info("linked", "from", local, "to", global)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), version.UserAgent())
		if s, err := project.ReadStatus(cfg.StatusFile()); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "root %s initialized %s by %s\n", s.RootPath, s.Date, s.Version)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&importMapPath, "import-map", "", "import map file or URL")
	prefetchCmd.Flags().StringVar(&importMapPath, "import-map", "", "import map file or URL")
	initCmd.Flags().BoolVar(&force, "force", false, "rewrite compiler paths even if present")
}

// openImportMap reads an import map from a file, or over HTTP when
// location is a URL.
func openImportMap(cmd *cobra.Command, location string) (*importmap.Map, error) {
	if data.IsRemote(location) {
		return importmap.Fetch(cmd.Context(), nil, location)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// A local map has no URL to resolve relative addresses against,
	// so only its absolute entries are usable.
	m, err := importmap.Parse(f, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return m, nil
}
