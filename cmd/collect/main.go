// Command collect runs the ingest pipeline: download or discover the game
// files, resolve and merge them into the canonical schema, and load the
// result into the configured storage backend.
//
// Configuration layers, lowest to highest precedence: built-in defaults, the
// -config JSON file, then any flag passed explicitly on the command line.
//
// Exit status is 0 on success, including runs that finish with verification
// warnings, and 1 on any fatal error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gamedata/internal/config"
	"gamedata/internal/datasource/kaggle"
	"gamedata/internal/ingest"
	"gamedata/internal/metrics"
	"gamedata/internal/metrics/datadog"
	"gamedata/internal/metrics/prompush"
	"gamedata/internal/storage"

	// register all backends with the storage factory; the config picks one
	// at runtime.
	_ "gamedata/internal/storage/all"
)

func main() {
	def := config.Default()

	var (
		flagJob      = flag.String("job", def.Job, "job name labeling metrics and logs")
		flagDataset  = flag.String("dataset", def.Dataset, "dataset ref (owner/slug) to download; empty skips the download")
		flagDataDir  = flag.String("data-dir", def.DataDir, "directory of CSV files to ingest (doubles as the download cache)")
		flagTable    = flag.String("table", def.Table, "destination table name")
		flagDB       = flag.String("db", def.DB, "sqlite database path (shorthand for -dsn with -storage=sqlite)")
		flagIfExists = flag.String("if-exists", def.IfExists, "replace or append rows already in the table")
		flagStorage  = flag.String("storage", def.Storage.Kind, fmt.Sprintf("storage backend: %v", storage.ListKinds()))
		flagDSN      = flag.String("dsn", def.Storage.DSN, "storage connection string; overrides -db")
		flagPreview  = flag.Int("preview", def.Preview, "rows shown in the run summary; 0 disables the preview")
		flagConfig   = flag.String("config", "", "JSON config file applied over the defaults")

		metricsBackendFlg = flag.String("metrics-backend", "none", "metrics backend: none, prometheus or datadog")
		pushGatewayURLFlg = flag.String("pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
		statsdAddrFlg     = flag.String("statsd-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")

		validate = flag.Bool("validate", false, "validate the configuration and exit")
		verbose  = flag.Bool("v", false, "enable verbose logs")
	)
	flag.Parse()

	cfg := config.Default()
	if *flagConfig != "" {
		if err := config.Load(*flagConfig, &cfg); err != nil {
			fatalf("%v", err)
		}
	}

	// Explicit flags win over the file. flag.Visit only sees flags actually
	// passed, so file values survive unless overridden.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "job":
			cfg.Job = *flagJob
		case "dataset":
			cfg.Dataset = *flagDataset
		case "data-dir":
			cfg.DataDir = *flagDataDir
		case "table":
			cfg.Table = *flagTable
		case "db":
			cfg.DB = *flagDB
		case "if-exists":
			cfg.IfExists = *flagIfExists
		case "storage":
			cfg.Storage.Kind = *flagStorage
		case "dsn":
			cfg.Storage.DSN = *flagDSN
		case "preview":
			cfg.Preview = *flagPreview
		case "v":
			cfg.Verbose = *verbose
		}
	})

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid")
	}
	if *validate {
		log.Printf("configuration is valid")
		return
	}

	setupMetrics(cfg.Job, *metricsBackendFlg, *pushGatewayURLFlg, *statsdAddrFlg, cfg.Verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	mode, err := storage.ParseMode(cfg.IfExists)
	if err != nil {
		fatalf("%v", err)
	}

	var downloader ingest.Downloader
	if cfg.Dataset != "" {
		creds, ok := kaggle.LoadCredentials()
		if !ok && cfg.Verbose {
			log.Printf("kaggle: no credentials found; attempting anonymous download")
		}
		kc, err := kaggle.NewClient(kaggle.Config{
			CacheDir:    cfg.DataDir,
			Credentials: creds,
		})
		if err != nil {
			fatalf("%v", err)
		}
		downloader = kc
	}

	p, err := ingest.New(ingest.Options{
		Job:        cfg.Job,
		Dataset:    cfg.Dataset,
		DataDir:    cfg.DataDir,
		Downloader: downloader,
		Table:      cfg.Table,
		Kind:       cfg.Storage.Kind,
		DSN:        cfg.StorageDSN(),
		Mode:       mode,
		Preview:    cfg.Preview,
	})
	if err != nil {
		fatalf("%v", err)
	}

	start := time.Now()
	rep, err := p.Run(context.Background())
	if err != nil {
		fatalf("%v", err)
	}
	rep.Render(os.Stdout)
	if cfg.Verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// setupMetrics installs the selected metrics backend; on any setup problem
// the nop backend stays so the run itself is never blocked by metrics.
func setupMetrics(job, backend, gatewayURL, statsdAddr string, verbose bool) {
	switch backend {
	case "prometheus":
		gwURL := gatewayURL
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=prometheus url=%s job=%s", gwURL, job)
		metrics.SetBackend(b)

	case "datadog":
		addr := statsdAddr
		if addr == "" {
			addr = os.Getenv("DD_DOGSTATSD_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      addr,
			Namespace: "gamedata.",
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%s", addr)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backend)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
