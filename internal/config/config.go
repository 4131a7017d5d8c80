// Package config loads agent configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Agent struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Wallet      string   `yaml:"wallet"`
		Skills      []string `yaml:"skills"`
		GatewayURL  string   `yaml:"gateway_url"`
	} `yaml:"agent"`
	Server struct {
		Addr        string `yaml:"addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`
	Market struct {
		BaseURL string `yaml:"base_url"`
		ChainID string `yaml:"chain_id"`
	} `yaml:"market"`
	Chain struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"chain"`
	Watchlist []string `yaml:"watchlist"`
	Schedule  struct {
		WhaleCron    string `yaml:"whale_cron"`
		MomentumCron string `yaml:"momentum_cron"`
	} `yaml:"schedule"`
	Database struct {
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickhouseDSN string `yaml:"clickhouse_dsn"`
		UseMemory     bool   `yaml:"use_memory"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides, then fills defaults. A missing file is not an error; the
// agent can run entirely from env and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("AGENT_NAME"); v != "" {
		cfg.Agent.Name = v
	}
	if v := os.Getenv("AGENT_WALLET"); v != "" {
		cfg.Agent.Wallet = v
	}
	if v := os.Getenv("GATEWAY_URL"); v != "" {
		cfg.Agent.GatewayURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			cfg.Server.Addr = ":" + v
		}
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("CHAIN_BASE_URL"); v != "" {
		cfg.Chain.BaseURL = v
	}
	if v := os.Getenv("CHAIN_API_KEY"); v != "" {
		cfg.Chain.APIKey = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist = splitList(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_URL"); v != "" {
		cfg.Database.ClickhouseDSN = v
	}
	if v := os.Getenv("USE_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.UseMemory = b
		}
	}

	// Defaults
	if cfg.Agent.Name == "" {
		cfg.Agent.Name = "MEMEX1000"
	}
	if cfg.Agent.Description == "" {
		cfg.Agent.Description = "Agent for meme coin screening, smart money tracking, and copy-trading on Base"
	}
	if cfg.Agent.Wallet == "" {
		cfg.Agent.Wallet = "0x9C67140AdE64577ef6B40BeA6a801aDf1555a5E8"
	}
	if len(cfg.Agent.Skills) == 0 {
		cfg.Agent.Skills = []string{
			"analyze_meme_coin", "smart_money_track", "execute_trade",
			"copy_trade", "monitor_wallet", "momentum_scan",
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":3000"
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = ":9090"
	}
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = "https://api.dexscreener.com/latest/dex"
	}
	if cfg.Market.ChainID == "" {
		cfg.Market.ChainID = "base"
	}
	if cfg.Chain.BaseURL == "" {
		cfg.Chain.BaseURL = "https://api.basescan.org/api"
	}
	if cfg.Chain.APIKey == "" {
		cfg.Chain.APIKey = "YourApiKeyToken"
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []string{
			"0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb",
			"0x8ba1f109551bD432803012645Hac136c82C3e8C9",
		}
	}
	if cfg.Schedule.WhaleCron == "" {
		cfg.Schedule.WhaleCron = "*/2 * * * *"
	}
	if cfg.Schedule.MomentumCron == "" {
		cfg.Schedule.MomentumCron = "*/5 * * * *"
	}
	if cfg.Database.PostgresDSN == "" && cfg.Database.ClickhouseDSN == "" {
		cfg.Database.UseMemory = true
	}

	return cfg, nil
}

// Validate checks that required fields are set and coherent.
func (c *Config) Validate() error {
	if c.Agent.Name == "" {
		return fmt.Errorf("agent.name is required")
	}
	if c.Agent.Wallet == "" {
		return fmt.Errorf("agent.wallet is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}
	if c.Chain.BaseURL == "" {
		return fmt.Errorf("chain.base_url is required")
	}
	if !c.Database.UseMemory && c.Database.PostgresDSN == "" {
		return fmt.Errorf("database.postgres_dsn is required unless use_memory is set")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
