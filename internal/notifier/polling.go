package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CommandHandler maps a chat command to its reply text. An empty reply
// means nothing is sent back.
type CommandHandler func(command string) string

// pollRetryDelay is the pause after a failed getUpdates round.
const pollRetryDelay = 5 * time.Second

type pollUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message"`
}

// StartPolling long-polls getUpdates and feeds chat commands to handler
// until ctx is cancelled. Commands are exact strings, never free-form
// queries; group-style mentions (/scan@SomeBot) are normalized first.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	var offset int64
	// Long-poll timeout is 30s server-side; leave headroom on the client.
	client := &http.Client{Timeout: 40 * time.Second}

	for ctx.Err() == nil {
		updates, err := t.fetchUpdates(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[WARN] poll updates: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(pollRetryDelay):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			t.dispatch(u, handler)
		}
	}
	log.Println("[INFO] command polling stopped")
}

func (t *TelegramNotifier) fetchUpdates(ctx context.Context, client *http.Client, offset int64) ([]pollUpdate, error) {
	apiURL := t.apiBase + "/bot" + t.botToken + "/getUpdates?timeout=30&offset=" + strconv.FormatInt(offset, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read getUpdates response: %w", err)
	}
	var env struct {
		OK          bool         `json:"ok"`
		Description string       `json:"description"`
		Result      []pollUpdate `json:"result"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode getUpdates response: %w", err)
	}
	if !env.OK {
		return nil, fmt.Errorf("getUpdates rejected (status %d): %s", resp.StatusCode, env.Description)
	}
	return env.Result, nil
}

func (t *TelegramNotifier) dispatch(u pollUpdate, handler CommandHandler) {
	if u.Message == nil {
		return
	}
	cmd := normalizeCommand(u.Message.Text)
	if cmd == "" {
		return
	}
	log.Printf("[INFO] chat command: %s", cmd)
	if reply := handler(cmd); reply != "" {
		if err := t.Send(reply); err != nil {
			log.Printf("[ERROR] reply to %s: %v", cmd, err)
		}
	}
}

// normalizeCommand trims whitespace and the @botname suffix Telegram
// appends to commands issued in group chats.
func normalizeCommand(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		if at := strings.IndexByte(text, '@'); at > 0 {
			text = text[:at]
		}
	}
	return text
}
