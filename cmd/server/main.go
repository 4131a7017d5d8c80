// Package main runs the full agent: HTTP API, task gateway, and the
// scheduled whale and momentum scans.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"memex-agent/internal/agent"
	"memex-agent/internal/api"
	"memex-agent/internal/chaindata"
	"memex-agent/internal/config"
	"memex-agent/internal/decision"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/executor"
	"memex-agent/internal/marketdata"
	"memex-agent/internal/observability"
	"memex-agent/internal/pipeline"
	"memex-agent/internal/scanner"
	"memex-agent/internal/scheduler"
	"memex-agent/internal/storage"
	chstore "memex-agent/internal/storage/clickhouse"
	"memex-agent/internal/storage/memory"
	"memex-agent/internal/storage/migrations"
	pgstore "memex-agent/internal/storage/postgres"
	"memex-agent/internal/whale"
)

// heartbeatInterval paces the liveness log line and uptime metric.
const heartbeatInterval = 60 * time.Second

// ledgerStores holds the storage implementations the agent trades against.
type ledgerStores struct {
	positions storage.PositionStore
	trades    storage.TradeStore
	archive   storage.SignalArchive
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := eventlog.New(logger)
	events.Printf("%s starting", cfg.Agent.Name)

	stores, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Components
	market := marketdata.NewClient(cfg.Market.BaseURL)
	chain := chaindata.NewClient(cfg.Chain.BaseURL, cfg.Chain.APIKey)

	sc := scanner.New(market, cfg.Market.ChainID, events)
	tracker := whale.New(chain, cfg.Watchlist, events)
	engine := decision.NewEngine()
	exec := executor.New(stores.positions, stores.trades, tracker, engine, cfg.Agent.Wallet, events)
	pipe := pipeline.New(sc, tracker, exec)

	// Scheduled scans
	sched := scheduler.New(pipe, stores.archive, events)
	if err := sched.RegisterAll(ctx, cfg.Schedule.WhaleCron, cfg.Schedule.MomentumCron); err != nil {
		logger.Fatalf("Failed to register cron jobs: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Task gateway, optional
	var gateway *agent.Gateway
	if cfg.Agent.GatewayURL != "" {
		gateway = agent.NewGateway(cfg.Agent.GatewayURL, agent.Card{
			Name:        cfg.Agent.Name,
			Description: cfg.Agent.Description,
			Wallet:      cfg.Agent.Wallet,
			Skills:      cfg.Agent.Skills,
		}, pipe, events, nil)
		go func() {
			if err := gateway.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("Gateway stopped: %v", err)
			}
		}()
		defer gateway.Close()
	} else {
		events.Printf("no gateway URL, task gateway disabled")
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		if err := http.ListenAndServe(cfg.Server.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	// API server
	apiServer := api.NewServer(pipe, events, cfg.Agent.Name, cfg.Agent.Wallet)
	apiServer.SetGateway(cfg.Agent.GatewayURL)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: apiServer.Router(),
	}
	go func() {
		events.Printf("server on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Heartbeat
	go heartbeat(ctx, events)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf("Received signal %v, shutting down", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores builds the ledger stores from config. With use_memory set
// everything lives in process; otherwise positions and trades go to
// PostgreSQL and scan snapshots to ClickHouse, running migrations first.
func createStores(ctx context.Context, cfg *config.Config) (*ledgerStores, func(), error) {
	if cfg.Database.UseMemory {
		return &ledgerStores{
			positions: memory.NewPositionStore(),
			trades:    memory.NewTradeStore(),
			archive:   memory.NewSignalArchive(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Database.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := &ledgerStores{
		positions: pgstore.NewPositionStore(pool),
		trades:    pgstore.NewTradeStore(pool),
	}
	cleanup := func() { pool.Close() }

	// The archive is optional; trading works without analytics.
	if cfg.Database.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Database.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.archive = chstore.NewSignalArchive(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// heartbeat logs liveness and feeds the uptime counter.
func heartbeat(ctx context.Context, events *eventlog.Log) {
	started := time.Now()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			events.Printf("heartbeat, uptime %ds", int(time.Since(started).Seconds()))
			observability.RecordUptime(heartbeatInterval.Seconds())
		case <-ctx.Done():
			return
		}
	}
}
