package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"psxscan/internal/classifier"
	"psxscan/internal/collector"
	"psxscan/internal/notifier"
	"psxscan/internal/screener"
)

// Scheduler runs the scan on a cron schedule and serves commands.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Classifier *classifier.Classifier
	Filters    screener.Options
	Notifier   notifier.Notifier
	Ctx        context.Context

	mu         sync.Mutex
	lastReport string
	lastScanAt time.Time
	lastCount  int
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, cls *classifier.Classifier, filters screener.Options, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Collector:  col,
		Classifier: cls,
		Filters:    filters,
		Notifier:   n,
		Ctx:        ctx,
	}
}

// RegisterAll registers the scan task.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	log.Println("[INFO] running market scan")
	ref := time.Now()

	data, err := s.Collector.Collect(ref)
	if err != nil {
		log.Printf("[ERROR] scan collect: %v", err)
		s.trySend(fmt.Sprintf("❌ Scan failed: data acquisition error: %v", err))
		return
	}

	// An empty snapshot is a valid outcome distinct from a fetch failure
	// and from "zero symbols matched filters".
	if len(data.Today) == 0 {
		msg := fmt.Sprintf("❌ No market data for %s", ref.Format("2006-01-02"))
		log.Printf("[WARN] %s", msg)
		s.trySend(msg)
		return
	}

	results := s.Classifier.Classify(data.Today, data.PrevDay, data.Weekly, data.Monthly, data.Meta)
	filtered := screener.Apply(results, s.Filters)
	log.Printf("[INFO] scan complete: %d rows, %d eligible, %d after filters",
		len(data.Today), len(results), len(filtered))

	report := notifier.FormatScanReport(data.RefDate, data.PrevDate, filtered)

	s.mu.Lock()
	s.lastReport = report
	s.lastScanAt = ref
	s.lastCount = len(filtered)
	s.mu.Unlock()

	s.trySend(report)
}

// HandleCommand processes a user command and returns a reply. Commands are
// exact strings; free-form queries are not interpreted.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		s.scanTask()
		return ""
	case "/summary":
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastReport == "" {
			return "No scan has run yet. Use /scan to run one now."
		}
		return s.lastReport
	case "/status":
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastScanAt.IsZero() {
			return "Scanner is running; no scan completed yet."
		}
		return fmt.Sprintf("Last scan: %s (%d symbols after filters)",
			s.lastScanAt.Format("2006-01-02 15:04"), s.lastCount)
	default:
		return "Available commands:\n• /scan — run a scan now\n• /summary — last scan report\n• /status — scanner status"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
