// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Command webimport loads modules addressed by URL into a local cache
// that compilers can resolve against.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/benjaminestes/webimport/cache"
	"github.com/benjaminestes/webimport/config"
	"github.com/benjaminestes/webimport/loader"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// concurrency bounds the loads in flight for load and prefetch.
const concurrency = 4

var (
	cfgFile string
	local   bool
	verbose bool

	cfg    *config.Config
	logger *log.Logger

	rootCmd = &cobra.Command{
		Use:           "webimport",
		Short:         "Cache modules addressed by URL for local compilation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(config.LoadOptions{ConfigFile: cfgFile, Local: local})
			if err != nil {
				return err
			}
			logger = newLogger(cfg.LogLevel)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.import/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&local, "local", false, "use ./.import instead of ~/.import")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every cache write")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(prefetchCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(staleCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger == nil {
			logger = newLogger("info")
		}
		logger.Error(err)
		os.Exit(1)
	}
}

func newLogger(level string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "webimport",
		ReportTimestamp: true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		l.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	l.SetLevel(lvl)
	return l
}

// newLoader builds a started Loader from the loaded configuration.
func newLoader() (*loader.Loader, error) {
	l := &loader.Loader{
		CacheDir:        cfg.CacheDir(),
		MetaDir:         cfg.MetaDir(),
		UserAgent:       cfg.Fetch.UserAgent,
		RobotsUserAgent: cfg.Fetch.RobotsUserAgent,
		RespectRobots:   cfg.Fetch.RespectRobots,
		Header:          cfg.Fetch.Headers,
		Timeout:         cfg.Fetch.Timeout,
		WaitTime:        cfg.Fetch.Wait,
		MaxBodyBytes:    cfg.Fetch.MaxBodyBytes,
		TTL:             cfg.Meta.TTL,
		Logger:          logger,
	}
	if cfg.Mirror.Enabled {
		mirror, err := cache.NewS3Mirror(cfg.Mirror.S3())
		if err != nil {
			return nil, fmt.Errorf("mirror: %w", err)
		}
		l.Mirror = mirror
	}
	if err := l.Start(); err != nil {
		return nil, err
	}
	return l, nil
}

type loaded struct {
	URL   string `json:"url"`
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Bytes int    `json:"bytes"`
}

// loadAll loads urls with bounded concurrency and writes one JSON
// line per success to out. A failed URL does not stop the others.
func loadAll(ctx context.Context, l loader.ModuleLoader, urls []string, out io.Writer, logger *log.Logger) error {
	var (
		mu     sync.Mutex
		count  int
		failed int
		start  = time.Now()
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			res, err := l.Load(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				logger.Error("load failed", "url", u, "err", err)
				return nil
			}
			j, err := json.Marshal(loaded{URL: res.URL, Path: res.Path, Kind: string(res.Kind), Bytes: len(res.Contents)})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", j)
			count++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("done", "loaded", count, "failed", failed, "elapsed", time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d of %d loads failed", failed, len(urls))
	}
	return nil
}

// listFromReader reads one URL per line, skipping blanks.
func listFromReader(in io.Reader) []string {
	var queue []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			queue = append(queue, line)
		}
	}
	return queue
}
