package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/cli"
	"github.com/alexanderramin/landminer/internal/config"
	"github.com/alexanderramin/landminer/internal/db"
	"github.com/alexanderramin/landminer/internal/logger"
	"github.com/alexanderramin/landminer/internal/repository"
	"github.com/alexanderramin/landminer/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// journalRetention bounds how long local action history is kept.
const journalRetention = 30 * 24 * time.Hour

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logCfg := logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Version: version}
	log := logger.Discard()
	if cfg.LogFile != "" {
		var closer io.Closer
		log, closer, err = logger.NewFile(logCfg, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer closer.Close()
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	actionRepo := repository.NewSQLiteActionRepo(database)
	snapshotRepo := repository.NewSQLiteSnapshotRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	if n, err := actionRepo.PurgeBefore(context.Background(), time.Now().Add(-journalRetention)); err != nil {
		log.Warn("purging action journal failed", "error", err)
	} else if n > 0 {
		log.Info("purged old journal entries", "count", n)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	observer := api.MultiObserver{api.NewPrometheusObserver(reg)}
	if cfg.LogCalls {
		observer = append(observer, api.NewLogObserver(log))
	}

	client := api.NewClient(api.Config{
		BaseURL:    cfg.APIURL,
		Token:      cfg.Token,
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.MaxRetries,
	}, observer)

	mining := service.NewMiningService(
		client,
		actionRepo,
		snapshotRepo,
		uow,
		service.MiningOptions{
			Logger:   log,
			Account:  cfg.APIURL,
			CacheTTL: cfg.CacheTTL(),
		},
		service.NewLogUseCaseObserver(log),
	)

	app := &cli.App{
		Mining:       mining,
		Logger:       log,
		PollInterval: cfg.Poll(),
		Metrics:      reg,
		MetricsAddr:  cfg.MetricsAddr,
	}

	// Detect interactive terminal: the bare command opens the TUI only there.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	log.Info("landminer starting", "api", cfg.APIURL, "db", cfg.DBPath)

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
