// Package notify — best-effort уведомления операторам в Телеграм.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/artem13815/matcher/pkg/audit"
)

const defaultMaxLen = 3500

// Telegram реализует audit.Sink: шлёт краткие сообщения об успехах и
// ошибках анализа через бот-API. Все отказы гасятся здесь же.
type Telegram struct {
	botToken string
	chatIDs  []string
	maxLen   int
	apiBase  string
	client   *http.Client
	log      *zap.Logger
}

func NewTelegram(botToken string, chatIDs []string, maxLen int, log *zap.Logger) *Telegram {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	return &Telegram{
		botToken: botToken,
		chatIDs:  chatIDs,
		maxLen:   maxLen,
		apiBase:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

func (t *Telegram) Emit(e audit.Event) {
	if t.botToken == "" || len(t.chatIDs) == 0 {
		return
	}
	var text string
	if e.Status == "ok" {
		text = fmt.Sprintf("✅ Matcher ok\nrequest_id: %s\nduration_ms: %d",
			e.RequestID, e.DurationMS)
	} else {
		text = fmt.Sprintf("⚠️ Matcher error\n%s\nrequest_id: %s\nduration_ms: %d",
			e.Error, e.RequestID, e.DurationMS)
	}
	for _, chatID := range t.chatIDs {
		t.sendLong(chatID, text)
	}
}

// sendLong режет длинные сообщения по лимиту Телеграма.
func (t *Telegram) sendLong(chatID, text string) {
	runes := []rune(text)
	for i := 0; i < len(runes); i += t.maxLen {
		end := i + t.maxLen
		if end > len(runes) {
			end = len(runes)
		}
		t.send(chatID, string(runes[i:end]))
	}
}

func (t *Telegram) send(chatID, text string) {
	payload, _ := json.Marshal(map[string]string{"chat_id": chatID, "text": text})
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	resp, err := t.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		if t.log != nil {
			t.log.Warn("telegram notify failed", zap.Error(err))
		}
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if t.log != nil {
			t.log.Warn("telegram notify failed", zap.Int("status", resp.StatusCode))
		}
	}
}

var _ audit.Sink = (*Telegram)(nil)
