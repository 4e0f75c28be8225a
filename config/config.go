// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package config loads webimport settings from defaults, an optional
// config file, a .env file and WEBIMPORT_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benjaminestes/webimport/cache"
	"github.com/benjaminestes/webimport/version"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "WEBIMPORT"
	// RootName is the directory holding the cache under the home
	// directory or the working directory.
	RootName = ".import"

	ModeGlobal = "global"
	ModeLocal  = "local"
)

type Config struct {
	Mode     string       `mapstructure:"mode"`
	Root     string       `mapstructure:"root"`
	LogLevel string       `mapstructure:"log_level"`
	Fetch    FetchConfig  `mapstructure:"fetch"`
	Meta     MetaConfig   `mapstructure:"meta"`
	Mirror   MirrorConfig `mapstructure:"mirror"`
}

type FetchConfig struct {
	UserAgent       string            `mapstructure:"user_agent"`
	Timeout         time.Duration     `mapstructure:"timeout"`
	Wait            time.Duration     `mapstructure:"wait"`
	MaxBodyBytes    int64             `mapstructure:"max_body_bytes"`
	Headers         map[string]string `mapstructure:"headers"`
	RespectRobots   bool              `mapstructure:"respect_robots"`
	RobotsUserAgent string            `mapstructure:"robots_user_agent"`
}

type MetaConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MirrorConfig configures the optional S3 mirror of the cache.
type MirrorConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// LoadOptions select the sources Load reads.
type LoadOptions struct {
	// ConfigFile is an explicit config file. It must exist.
	ConfigFile string
	// Local forces local mode regardless of configuration.
	Local bool
	// WorkDir and HomeDir default to the process's.
	WorkDir string
	HomeDir string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeGlobal)
	v.SetDefault("root", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("fetch.user_agent", version.UserAgent())
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.wait", time.Duration(0))
	v.SetDefault("fetch.max_body_bytes", int64(32<<20))
	v.SetDefault("fetch.headers", map[string]string{})
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("fetch.robots_user_agent", "webimport")
	v.SetDefault("meta.ttl", 24*time.Hour)
	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.endpoint", "")
	v.SetDefault("mirror.region", "us-east-1")
	v.SetDefault("mirror.access_key", "")
	v.SetDefault("mirror.secret_key", "")
	v.SetDefault("mirror.bucket", "")
	v.SetDefault("mirror.use_ssl", true)
	v.SetDefault("mirror.prefix", "")
}

// Load builds a Config from opts.
func Load(opts LoadOptions) (*Config, error) {
	workDir, err := firstNonEmpty(opts.WorkDir, os.Getwd)
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	homeDir, err := firstNonEmpty(opts.HomeDir, os.UserHomeDir)
	if err != nil {
		return nil, fmt.Errorf("home directory: %w", err)
	}

	// Variables already set in the environment win over .env.
	if err := godotenv.Load(filepath.Join(workDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(workDir)
		v.AddConfigPath(filepath.Join(homeDir, RootName))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if opts.Local {
		c.Mode = ModeLocal
	}
	if err := c.resolve(workDir, homeDir); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) resolve(workDir, homeDir string) error {
	switch c.Mode {
	case ModeGlobal:
		if c.Root == "" {
			c.Root = filepath.Join(homeDir, RootName)
		}
	case ModeLocal:
		if c.Root == "" {
			c.Root = filepath.Join(workDir, RootName)
		}
	default:
		return fmt.Errorf("unknown mode %q: want %q or %q", c.Mode, ModeGlobal, ModeLocal)
	}
	if !filepath.IsAbs(c.Root) {
		c.Root = filepath.Join(workDir, c.Root)
	}
	if c.Mirror.Enabled && c.Mirror.Bucket == "" {
		return errors.New("mirror enabled without a bucket")
	}
	return nil
}

// CacheDir holds the cached artifacts.
func (c *Config) CacheDir() string { return filepath.Join(c.Root, "cache") }

// MetaDir holds one metadata record per loaded URL.
func (c *Config) MetaDir() string { return filepath.Join(c.Root, "meta") }

func (c *Config) StatusFile() string { return filepath.Join(c.Root, "status.json") }

// S3 converts the mirror settings for cache.NewS3Mirror.
func (m MirrorConfig) S3() cache.S3Config {
	return cache.S3Config{
		Endpoint:  m.Endpoint,
		Region:    m.Region,
		AccessKey: m.AccessKey,
		SecretKey: m.SecretKey,
		Bucket:    m.Bucket,
		UseSSL:    m.UseSSL,
		Prefix:    m.Prefix,
	}
}

func firstNonEmpty(value string, fallback func() (string, error)) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	return fallback()
}
