package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/listino/catalog-service/internal/http/ratelimit"
)

func testClient() *Client {
	return NewClient(ratelimit.Config{
		RequestsPerSecond: 1000,
		MaxRetries:        2,
		InitialBackoffMs:  1,
		MaxBackoffMs:      10,
	})
}

func TestDoRetriesTransientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := testClient().Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("get after retries: %v", err)
	}
	resp.Body.Close()

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("got %d calls, want 3", got)
	}
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient().Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var retryErr *ratelimit.FetchRetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("got %T, want *ratelimit.FetchRetryError", err)
	}
	if retryErr.LastStatus != http.StatusBadGateway {
		t.Errorf("last status = %d, want 502", retryErr.LastStatus)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("got %d calls, want 3 (initial + 2 retries)", got)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient().Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("got %d calls, want 1", got)
	}
}

func TestDoRespectsRetryAfterHeader(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := testClient().Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("get after rate limit: %v", err)
	}
	resp.Body.Close()

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("got %d calls, want 2", got)
	}
}

func TestGetJSONDecodesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "CatalogService/1.0" {
			t.Errorf("user agent = %q", ua)
		}
		w.Write([]byte(`{"name": "test", "count": 7}`))
	}))
	defer server.Close()

	var out struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := testClient().GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if out.Name != "test" || out.Count != 7 {
		t.Errorf("decoded %+v", out)
	}
}
