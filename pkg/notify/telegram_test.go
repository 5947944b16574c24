package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artem13815/matcher/pkg/audit"
)

type sentMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func newBotServer(t *testing.T) (*httptest.Server, *[]sentMessage) {
	t.Helper()
	var mu sync.Mutex
	var got []sentMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/sendMessage"))
		var m sentMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
		w.Write([]byte(`{"ok": true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestTelegram_EmitOK(t *testing.T) {
	srv, got := newBotServer(t)
	tg := NewTelegram("token", []string{"1", "2"}, 0, zap.NewNop())
	tg.apiBase = srv.URL

	tg.Emit(audit.Event{RequestID: "req-1", Status: "ok", DurationMS: 900})

	require.Len(t, *got, 2)
	assert.Equal(t, "1", (*got)[0].ChatID)
	assert.Equal(t, "2", (*got)[1].ChatID)
	assert.Contains(t, (*got)[0].Text, "Matcher ok")
	assert.Contains(t, (*got)[0].Text, "req-1")
}

func TestTelegram_EmitError(t *testing.T) {
	srv, got := newBotServer(t)
	tg := NewTelegram("token", []string{"1"}, 0, zap.NewNop())
	tg.apiBase = srv.URL

	tg.Emit(audit.Event{RequestID: "req-2", Status: "error", Error: "gigachat_unavailable"})

	require.Len(t, *got, 1)
	assert.Contains(t, (*got)[0].Text, "Matcher error")
	assert.Contains(t, (*got)[0].Text, "gigachat_unavailable")
}

func TestTelegram_LongMessageChunked(t *testing.T) {
	srv, got := newBotServer(t)
	tg := NewTelegram("token", []string{"1"}, 40, zap.NewNop())
	tg.apiBase = srv.URL

	tg.Emit(audit.Event{
		RequestID: strings.Repeat("о", 100), // кириллица: лимит в рунах, не байтах
		Status:    "ok",
	})

	require.Greater(t, len(*got), 1)
	for _, m := range *got {
		assert.LessOrEqual(t, len([]rune(m.Text)), 40)
	}
}

func TestTelegram_NoTokenNoop(t *testing.T) {
	srv, got := newBotServer(t)
	tg := NewTelegram("", []string{"1"}, 0, zap.NewNop())
	tg.apiBase = srv.URL

	tg.Emit(audit.Event{RequestID: "req", Status: "ok"})
	assert.Empty(t, *got)
}

func TestTelegram_ServerErrorSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tg := NewTelegram("token", []string{"1"}, 0, zap.NewNop())
	tg.apiBase = srv.URL

	tg.Emit(audit.Event{RequestID: "req", Status: "ok"}) // не должно паниковать
}
