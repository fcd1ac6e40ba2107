package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gabrielvincent/batty/internal/battery"
	"github.com/gabrielvincent/batty/internal/config"
	dbussvc "github.com/gabrielvincent/batty/internal/dbus"
	"github.com/gabrielvincent/batty/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (built-in defaults when unset)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	resetDB := flag.Bool("reset-db", false, "delete the database and start fresh")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Error("load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
	}

	dbPath := cfg.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("create data dir", "err", err)
		os.Exit(1)
	}

	if *resetDB {
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
				logger.Error("delete database", "err", err)
				os.Exit(1)
			}
		}
		logger.Info("database deleted", "path", dbPath)
		return
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := dbussvc.NewService(store)
	conn, err := svc.Export()
	if err != nil {
		logger.Error("export dbus service", "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("D-Bus service registered", "name", "org.batty.Monitor")

	// A machine with no batteries is a normal outcome; keep running so
	// the D-Bus service can still answer history queries.
	paths := battery.FindBatteries(cfg.Discovery.PowerSupplyRoot)
	if len(paths) == 0 {
		logger.Info("no batteries found", "root", cfg.Discovery.PowerSupplyRoot)
	}

	seenWarnings := make(map[string]bool)
	logWarnings := func(warnings []string) {
		for _, w := range warnings {
			if seenWarnings[w] {
				continue
			}
			seenWarnings[w] = true
			logger.Warn(w)
		}
	}

	var batteries []*battery.Battery
	for _, p := range paths {
		b, warnings, err := battery.New(p)
		if err != nil {
			logger.Error("skip unreadable battery", "path", p, "err", err)
			continue
		}
		logWarnings(warnings)
		batteries = append(batteries, b)
		logger.Info("battery found", "path", p, "charge_pct", fmt.Sprintf("%.1f", b.ChargePercentage()))
	}

	runCleanup := func() {
		cutoff := time.Now().AddDate(0, 0, -cfg.Cleanup.RetentionDays).Unix()
		deleted, err := store.DeleteOlderThan(cutoff)
		if err != nil {
			logger.Error("cleanup", "err", err)
			return
		}
		logger.Debug("cleanup done", "deleted", deleted)
	}
	runCleanup()

	interval := time.Duration(cfg.Collection.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(time.Duration(cfg.Cleanup.IntervalHours) * time.Hour)
	defer cleanupTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("battyd started", "batteries", len(batteries), "interval", interval)
	for {
		select {
		case <-ticker.C:
			for _, b := range batteries {
				name := filepath.Base(b.Path())
				warnings, err := b.Refresh()
				if err != nil {
					// The prior snapshot stays valid; just report.
					logger.Error("refresh battery", "battery", name, "err", err)
					continue
				}
				logWarnings(warnings)

				attrs := []any{
					"battery", name,
					"charge_pct", fmt.Sprintf("%.1f", b.ChargePercentage()),
					"status", b.Status.String(),
				}
				if b.Cycles != nil {
					attrs = append(attrs, "cycles", *b.Cycles)
				}
				if h := b.HealthPercentage(); h != nil {
					attrs = append(attrs, "health_pct", fmt.Sprintf("%.1f", *h))
				}
				logger.Info("snapshot", attrs...)

				if err := store.InsertSnapshot(storage.NewSnapshot(time.Now().Unix(), b)); err != nil {
					logger.Error("store snapshot", "battery", name, "err", err)
				}
			}
		case <-cleanupTicker.C:
			runCleanup()
		case <-sigCh:
			logger.Info("shutting down")
			return
		}
	}
}
