// Package notify delivers pipeline completion events to interested parties.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	httpx "github.com/listino/catalog-service/internal/http"
	"github.com/listino/catalog-service/internal/types"
)

// Notifier delivers one completion event. Implementations must be safe to
// call with an already-canceled parent context since notification happens
// during run teardown.
type Notifier interface {
	Notify(ctx context.Context, event types.CompletionEvent) error
}

// Webhook posts the completion event as JSON to a configured endpoint
type Webhook struct {
	url    string
	client *httpx.Client
}

// NewWebhook creates a webhook notifier. The client handles retries and
// backoff, so a transient receiver outage does not lose the event.
func NewWebhook(url string, client *httpx.Client) *Webhook {
	return &Webhook{url: url, client: client}
}

func (w *Webhook) Notify(ctx context.Context, event types.CompletionEvent) error {
	resp, err := w.client.PostJSON(ctx, w.url, event)
	if err != nil {
		return fmt.Errorf("post completion webhook: %w", err)
	}
	resp.Body.Close()
	return nil
}

// Log writes the completion event to the structured log. Used as the default
// notifier when no webhook is configured.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, event types.CompletionEvent) error {
	evt := l.logger.Info()
	if !event.Success {
		evt = l.logger.Error()
	}
	evt.
		Str("run_id", event.RunID).
		Bool("success", event.Success).
		Dur("duration", event.Duration).
		Int("total_products", event.TotalProducts).
		Strs("warnings", event.Warnings).
		Strs("errors", event.Errors).
		Msg("Pipeline run finished")
	return nil
}

// Multi fans one event out to several notifiers, returning the first error
// after attempting all of them.
type Multi struct {
	notifiers []Notifier
}

func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) Notify(ctx context.Context, event types.CompletionEvent) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
