// Package main is the entry point for the metabolic health engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/heys-app/metabolic-engine/internal/api"
	"github.com/heys-app/metabolic-engine/internal/config"
	"github.com/heys-app/metabolic-engine/internal/domain"
	"github.com/heys-app/metabolic-engine/internal/report"
	"github.com/heys-app/metabolic-engine/internal/status"
	"github.com/heys-app/metabolic-engine/internal/store"
	"github.com/heys-app/metabolic-engine/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Best effort: a .env next to the binary can set ME_CONFIG.
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to configuration JSON file")
	flag.Parse()

	if *showVersion {
		fmt.Printf("metabolic %s (commit=%s, built=%s)\n", version, commit, date)
		os.Exit(0)
	}

	// Resolve config path: --config flag > ME_CONFIG env > auto-discover next to exe.
	path := *configPath
	if path == "" {
		path = os.Getenv("ME_CONFIG")
	}
	if path == "" {
		path = discoverConfig()
	}
	if path == "" {
		fatal("no config found. Place config.json next to the exe, use --config <path>, or set ME_CONFIG.")
	}

	cfg, err := config.Load(path)
	if err != nil {
		fatal(fmt.Sprintf("load config: %v", err))
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	records := &store.RecordRepo{DB: db}
	foods := &store.FoodRepo{DB: db}

	sink := &telemetry.LogSink{Prefix: "metabolic"}

	engine := status.NewEngine(records, foods, status.Options{
		Flags:      domain.StaticFlags{Enabled: cfg.Enabled()},
		Telemetry:  sink,
		CacheTTL:   time.Duration(cfg.CacheTTLSec) * time.Second,
		WindowDays: cfg.HistoryWindowDays,
		WaveHours:  cfg.InsulinWaveHours,
	})

	handler := &api.Handler{
		Engine:  engine,
		Reports: &report.Generator{Source: engine},
		Records: records,
		Foods:   foods,
		Limiter: api.NewRateLimiter(cfg.RateLimitPerMinute),
	}

	srv := api.NewServer(handler, cfg.ListenAddr)

	// Graceful shutdown on interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Println("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("metabolic engine listening on %s", api.FormatListenURL(cfg.ListenAddr))

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		fatal(fmt.Sprintf("server error: %v", err))
	}
}

// discoverConfig looks for config.json next to the executable, then in the cwd.
func discoverConfig() string {
	// Next to executable.
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	// Current working directory.
	if _, err := os.Stat("config.json"); err == nil {
		return "config.json"
	}
	return ""
}

func fatal(msg string) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", msg)
	os.Exit(1)
}
