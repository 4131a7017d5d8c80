// Package main is a one-shot scan CLI: it runs a momentum scan (or a
// single token analysis) against the live market source and prints JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"memex-agent/internal/config"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/marketdata"
	"memex-agent/internal/scanner"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	limit := flag.Int("limit", 5, "Max candidates to return")
	token := flag.String("token", "", "Analyze a single token by symbol or address instead of scanning")
	timeout := flag.Duration("timeout", 30*time.Second, "Request timeout")
	flag.Parse()

	logger := log.New(os.Stderr, "[scan] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	events := eventlog.New(logger)
	market := marketdata.NewClient(cfg.Market.BaseURL)
	sc := scanner.New(market, cfg.Market.ChainID, events)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *token != "" {
		candidate, found := sc.Analyze(ctx, *token)
		if !found {
			logger.Fatalf("No pair matches %q", *token)
		}
		if err := enc.Encode(candidate); err != nil {
			logger.Fatalf("Encode: %v", err)
		}
		return
	}

	results := sc.Scan(ctx, *limit)
	if err := enc.Encode(results); err != nil {
		logger.Fatalf("Encode: %v", err)
	}
}
