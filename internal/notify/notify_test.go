package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpx "github.com/listino/catalog-service/internal/http"
	"github.com/listino/catalog-service/internal/types"
)

func testEvent() types.CompletionEvent {
	return types.CompletionEvent{
		RunID:         "run-42",
		Success:       true,
		Duration:      3 * time.Second,
		TotalProducts: 120,
		Warnings:      []string{"PRICING: no rule matched 0000000000017"},
		FinishedAt:    time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookPostsCompletionEvent(t *testing.T) {
	var received types.CompletionEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := NewWebhook(server.URL, httpx.NewClientDefault())
	require.NoError(t, webhook.Notify(context.Background(), testEvent()))

	assert.Equal(t, "run-42", received.RunID)
	assert.True(t, received.Success)
	assert.Equal(t, 120, received.TotalProducts)
	assert.Len(t, received.Warnings, 1)
}

func TestWebhookReportsDeliveryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	webhook := NewWebhook(server.URL, httpx.NewClientDefault())
	err := webhook.Notify(context.Background(), testEvent())
	assert.Error(t, err)
}

func TestLogNotifierNeverFails(t *testing.T) {
	log := NewLog(zerolog.Nop())

	assert.NoError(t, log.Notify(context.Background(), testEvent()))

	failed := testEvent()
	failed.Success = false
	failed.Errors = []string{"INGESTION: all 3 suppliers failed"}
	assert.NoError(t, log.Notify(context.Background(), failed))
}

type failingNotifier struct {
	err   error
	calls int
}

func (f *failingNotifier) Notify(ctx context.Context, event types.CompletionEvent) error {
	f.calls++
	return f.err
}

func TestMultiAttemptsAllNotifiers(t *testing.T) {
	first := &failingNotifier{err: errors.New("webhook down")}
	second := &failingNotifier{}
	third := &failingNotifier{err: errors.New("also down")}

	multi := NewMulti(first, second, third)
	err := multi.Notify(context.Background(), testEvent())

	assert.EqualError(t, err, "webhook down", "first error wins")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls, "later notifiers still run")
	assert.Equal(t, 1, third.calls)
}
