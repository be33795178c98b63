// cmd/igcdump/config.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mmp/igc/log"
	"github.com/mmp/igc/storage"
)

const CurrentConfigVersion = 1

type Config struct {
	Version int

	// Output format: "dump", "json", or "summary".
	Format      string
	Parallelism int

	CacheEnabled    bool
	CacheDir        string // if empty, util.DefaultCacheDir() is used
	CacheMaxBytes   int64
	MemoryCacheSize int

	// GCSCredentialsFile is a service account JSON file; the
	// IGC_GCS_CREDENTIALS environment variable, if set, takes precedence.
	GCSCredentialsFile string
	S3Region           string
}

func getDefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		Format:          "summary",
		Parallelism:     runtime.NumCPU(),
		CacheEnabled:    true,
		CacheMaxBytes:   256 * 1024 * 1024,
		MemoryCacheSize: 64,
	}
}

func configFilePath(lg *log.Logger) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		lg.Errorf("Unable to find user config dir: %v", err)
		dir = "."
	}

	dir = filepath.Join(dir, "igcdump")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		lg.Errorf("%s: unable to make directory for config file: %v", dir, err)
	}

	return filepath.Join(dir, "config.json")
}

// LoadOrMakeDefaultConfig reads the config file at fn, or the default
// location if fn is empty. A missing file gives the default config; if the
// file can't be decoded, the default config is returned along with the
// error.
func LoadOrMakeDefaultConfig(fn string, lg *log.Logger) (config *Config, configErr error) {
	if fn == "" {
		fn = configFilePath(lg)
	}
	lg.Infof("Loading config from: %s", fn)

	config = getDefaultConfig()

	contents, err := os.ReadFile(fn)
	if os.IsNotExist(err) {
		return config, nil
	} else if err != nil {
		return config, err
	}

	d := json.NewDecoder(bytes.NewReader(contents))
	d.DisallowUnknownFields()
	loaded := getDefaultConfig()
	if err := d.Decode(loaded); err != nil {
		return config, fmt.Errorf("%s: %w", fn, err)
	}

	if loaded.Version > CurrentConfigVersion {
		lg.Warnf("%s: config version %d is newer than supported version %d", fn, loaded.Version,
			CurrentConfigVersion)
	}
	loaded.Version = CurrentConfigVersion

	if err := loaded.Validate(); err != nil {
		return config, fmt.Errorf("%s: %w", fn, err)
	}
	return loaded, nil
}

func (c *Config) Validate() error {
	switch c.Format {
	case "dump", "json", "summary":
	default:
		return fmt.Errorf("%q: unknown output format", c.Format)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.MemoryCacheSize < 0 || c.CacheMaxBytes < 0 {
		return fmt.Errorf("cache sizes must not be negative")
	}
	return nil
}

func (c *Config) Save(fn string, lg *log.Logger) error {
	if fn == "" {
		fn = configFilePath(lg)
	}
	b, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(fn, b, 0o600)
}

func (c *Config) Credentials() (storage.Credentials, error) {
	creds := storage.Credentials{S3Region: c.S3Region}

	if js := os.Getenv("IGC_GCS_CREDENTIALS"); js != "" {
		creds.GCSCredentialsJSON = []byte(js)
	} else if c.GCSCredentialsFile != "" {
		b, err := os.ReadFile(c.GCSCredentialsFile)
		if err != nil {
			return creds, err
		}
		creds.GCSCredentialsJSON = b
	}
	return creds, nil
}
