package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"psxscan/internal/classifier"
	"psxscan/internal/collector"
	"psxscan/internal/config"
	"psxscan/internal/model"
	"psxscan/internal/notifier"
	"psxscan/internal/scheduler"
	"psxscan/internal/screener"
	"psxscan/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] psxscan starting...")

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	fetcher := collector.NewPSXFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), cfg.DataSource.BaseURL)

	// Init snapshot store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Init collector and classifier
	col := collector.NewCollector(fetcher, st, cfg.Scan.MaxDaysBack)
	cls := classifier.New(classifier.Config{
		CircuitBreakerPct:     decimal.NewFromFloat(cfg.Scan.CircuitBreakerPercentage),
		CircuitBreakerRsLimit: decimal.NewFromFloat(*cfg.Scan.CircuitBreakerRsLimit),
		MonthCodes:            cfg.Scan.MonthCodes,
	})

	filters := screener.Options{
		BreakoutOnly:   cfg.Filters.BreakoutOnly,
		Sector:         cfg.Filters.Sector,
		KMI:            cfg.Filters.KMI,
		CircuitBreaker: model.CircuitStatus(cfg.Filters.CircuitBreaker),
		Symbols:        cfg.Filters.Symbols,
	}

	// Init notifier: Telegram when configured, process log otherwise.
	var tn *notifier.TelegramNotifier
	var n notifier.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[INFO] Telegram not configured, reports go to the log")
		n = notifier.NewLogNotifier()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, cls, filters, n)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram command polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan now")
		go sched.RunScanNow()
	}

	log.Println("[INFO] psxscan is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] psxscan stopped")
}
