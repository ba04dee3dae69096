package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"data_source"`
	Scan struct {
		MaxDaysBack              int     `yaml:"max_days_back"`
		CircuitBreakerPercentage float64 `yaml:"circuit_breaker_percentage"`
		// Pointer so an explicit 0 is distinguishable from unset: the
		// rupee floor is regulatory and cannot be disabled, only raised.
		CircuitBreakerRsLimit *float64 `yaml:"circuit_breaker_rs_limit"`
		MonthCodes            []string `yaml:"month_codes"`
	} `yaml:"scan"`
	Filters struct {
		BreakoutOnly   bool     `yaml:"breakout_only"`
		Sector         string   `yaml:"sector"`
		KMI            string   `yaml:"kmi"`
		CircuitBreaker string   `yaml:"circuit_breaker"`
		Symbols        []string `yaml:"symbols"`
	} `yaml:"filters"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("PSX_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("MAX_DAYS_BACK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.MaxDaysBack = n
		}
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://dps.psx.com.pk"
	}
	if cfg.Scan.MaxDaysBack == 0 {
		cfg.Scan.MaxDaysBack = 5
	}
	if cfg.Scan.CircuitBreakerPercentage == 0 {
		cfg.Scan.CircuitBreakerPercentage = 7.5
	}
	if cfg.Scan.CircuitBreakerRsLimit == nil {
		def := 1.0
		cfg.Scan.CircuitBreakerRsLimit = &def
	}
	if cfg.Schedule.ScanCron == "" {
		// PSX closes 15:30 PKT Mon-Fri; scan shortly after.
		cfg.Schedule.ScanCron = "0 45 15 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/psxscan.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and sane.
func (c *Config) Validate() error {
	if c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required")
	}
	if c.Scan.MaxDaysBack < 1 {
		return fmt.Errorf("scan.max_days_back must be at least 1")
	}
	if c.Scan.CircuitBreakerPercentage <= 0 {
		return fmt.Errorf("scan.circuit_breaker_percentage must be positive")
	}
	if c.Scan.CircuitBreakerRsLimit == nil || *c.Scan.CircuitBreakerRsLimit <= 0 {
		return fmt.Errorf("scan.circuit_breaker_rs_limit must be positive")
	}
	switch c.Filters.KMI {
	case "", "All", "Yes", "No":
	default:
		return fmt.Errorf("filters.kmi must be All, Yes or No")
	}
	return nil
}
