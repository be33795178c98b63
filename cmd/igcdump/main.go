// cmd/igcdump/main.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// igcdump parses IGC flight logs from local files, directories, gs:// or
// s3:// URLs and prints what it finds. Inputs may be zstd or gzip
// compressed.

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmp/igc/igc"
	"github.com/mmp/igc/log"
	"github.com/mmp/igc/storage"
	"github.com/mmp/igc/util"

	"github.com/apenwarr/fixconsole"
	"golang.org/x/sync/errgroup"
)

var (
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	verbose     = flag.Bool("v", false, "also write log messages to stderr")
	configFile  = flag.String("config", "", "config file (default: user config directory)")
	saveConfig  = flag.Bool("saveconfig", false, "write the effective configuration to the config file and exit")
	format      = flag.String("format", "", "output format: dump, json, summary (overrides config)")
	parallelism = flag.Int("j", 0, "number of files to parse concurrently (overrides config)")
	noCache     = flag.Bool("nocache", false, "don't use or update the parsed flight cache")
	cullCache   = flag.Bool("cullcache", false, "trim the on-disk flight cache to its configured size and exit")
)

type result struct {
	name   string
	flight *igc.Flight
	err    error
}

type parser struct {
	opener *storage.Opener
	cache  *util.FlightCache // may be nil
	lg     *log.Logger
}

func (p *parser) parse(ctx context.Context, name string) (*igc.Flight, error) {
	r, err := p.opener.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var key string
	if p.cache != nil {
		key = util.CacheKey(contents)
		if f, ok := p.cache.Get(key); ok {
			p.lg.Debugf("%s: using cached flight", name)
			return f, nil
		}
	}

	f, err := igc.ParseReader(bytes.NewReader(contents), p.lg.With("file", name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if p.cache != nil {
		if err := p.cache.Put(key, f); err != nil {
			p.lg.Warnf("%s: unable to cache flight: %v", name, err)
		}
	}
	return f, nil
}

// parseAll parses the named inputs concurrently. A failure in one input
// doesn't stop the others; each result carries its own error.
func (p *parser) parseAll(ctx context.Context, names []string, n int) ([]result, error) {
	results := make([]result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := p.parse(ctx, name)
			results[i] = result{name: name, flight: f, err: err}
			return nil
		})
	}
	return results, g.Wait()
}

func openCache(config *Config, lg *log.Logger) (*util.FlightCache, error) {
	if !config.CacheEnabled {
		return nil, nil
	}
	dir := config.CacheDir
	if dir == "" {
		var err error
		if dir, err = util.DefaultCacheDir(); err != nil {
			return nil, err
		}
	}
	return util.NewFlightCache(config.MemoryCacheSize, dir, lg), nil
}

func run(ctx context.Context, config *Config, names []string, w io.Writer, lg *log.Logger) (int, error) {
	creds, err := config.Credentials()
	if err != nil {
		return 0, err
	}
	opener := storage.NewOpener(creds, lg)
	defer opener.Close()

	cache, err := openCache(config, lg)
	if err != nil {
		lg.Warnf("Flight cache disabled: %v", err)
	}

	names, err = opener.Expand(ctx, names)
	if err != nil {
		return 0, err
	}

	p := &parser{opener: opener, cache: cache, lg: lg}
	results, err := p.parseAll(ctx, names, config.Parallelism)
	if err != nil {
		return 0, err
	}

	nfailed := 0
	for _, r := range results {
		if r.err != nil {
			nfailed++
			lg.Error("Parse failed", "file", r.name, "error", r.err)
			writeError(w, config.Format, r.name, r.err)
		} else if err := writeFlight(w, config.Format, r.name, r.flight); err != nil {
			return nfailed, err
		}
	}

	if cache != nil {
		if err := cache.Cull(config.CacheMaxBytes); err != nil {
			lg.Warnf("Unable to cull flight cache: %v", err)
		}
	}

	lg.Infof("Parsed %d files, %d failed", len(results), nfailed)
	return nfailed, nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.igc|dir/|gs://bucket/path|s3://bucket/path...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	lg := log.New(*logLevel, *logDir, *verbose)
	defer lg.CatchAndReportCrash()

	config, err := LoadOrMakeDefaultConfig(*configFile, lg)
	if err != nil {
		lg.Errorf("Error loading config: %v", err)
	}
	if *format != "" {
		config.Format = *format
	}
	if *parallelism != 0 {
		config.Parallelism = *parallelism
	}
	if *noCache {
		config.CacheEnabled = false
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *saveConfig {
		if err := config.Save(*configFile, lg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *cullCache {
		cache, err := openCache(config, lg)
		if err == nil && cache != nil {
			err = cache.Cull(config.CacheMaxBytes)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nfailed, err := run(ctx, config, flag.Args(), os.Stdout, lg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		lg.Errorf("%v", err)
		os.Exit(1)
	}
	if nfailed > 0 {
		os.Exit(1)
	}
}
