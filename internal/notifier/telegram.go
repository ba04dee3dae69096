package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxMessageLen is Telegram's hard cap on sendMessage text. Reports longer
// than this are split on line boundaries and delivered as a sequence.
const maxMessageLen = 4096

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier delivers scan reports to a Telegram chat.
type TelegramNotifier struct {
	// ParseMode is sent with every message; the report formatter emits
	// HTML tags, so the default is "HTML". Empty disables formatting.
	ParseMode string
	// RetryBase is the first backoff interval for SendWithRetry; each
	// further attempt doubles it.
	RetryBase time.Duration

	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		ParseMode: "HTML",
		RetryBase: time.Second,
		botToken:  botToken,
		chatID:    chatID,
		apiBase:   telegramAPIBase,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// apiEnvelope is the wrapper Telegram puts around every method result.
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Send delivers text to the configured chat, splitting it into several
// messages when it exceeds the Telegram limit. Delivery stops at the first
// failed chunk.
func (t *TelegramNotifier) Send(text string) error {
	for i, part := range splitMessage(text, maxMessageLen) {
		if err := t.postMessage(part); err != nil {
			return fmt.Errorf("chunk %d: %w", i+1, err)
		}
	}
	return nil
}

func (t *TelegramNotifier) postMessage(text string) error {
	payload := map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	}
	if t.ParseMode != "" {
		payload["parse_mode"] = t.ParseMode
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sendMessage: %w", err)
	}
	resp, err := t.client.Post(t.apiBase+"/bot"+t.botToken+"/sendMessage", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post sendMessage: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read sendMessage response: %w", err)
	}
	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode sendMessage response (status %d): %w", resp.StatusCode, err)
	}
	if !env.OK {
		return fmt.Errorf("sendMessage rejected (status %d): %s", resp.StatusCode, env.Description)
	}
	return nil
}

// splitMessage breaks text into chunks of at most limit bytes, cutting at
// line boundaries so HTML tags from the formatter stay intact. A single
// line longer than the limit is cut mid-line.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if b.Len() > 0 {
				parts = append(parts, b.String())
				b.Reset()
			}
			parts = append(parts, line[:limit])
			line = line[limit:]
		}
		if b.Len()+len(line) > limit {
			parts = append(parts, b.String())
			b.Reset()
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

// SendWithRetry sends a message, retrying with exponential backoff from
// RetryBase. maxRetries is the number of retries after the first attempt.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	base := t.RetryBase
	if base <= 0 {
		base = time.Second
	}
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = t.Send(text)
		if lastErr == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		wait := base << uint(attempt)
		log.Printf("[WARN] report delivery failed (attempt %d/%d), next try in %v: %v",
			attempt+1, maxRetries+1, wait, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxRetries+1, lastErr)
}
