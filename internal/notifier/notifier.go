package notifier

import (
	"context"
	"log"
)

// Notifier delivers scan reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// LogNotifier writes reports to the process log; used when no Telegram
// credentials are configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (l *LogNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	log.Printf("[INFO] scan report:\n%s", text)
	return nil
}
