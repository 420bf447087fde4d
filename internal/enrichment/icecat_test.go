package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpx "github.com/listino/catalog-service/internal/http"
	"github.com/listino/catalog-service/internal/types"
)

type fakeWriter struct {
	mu       sync.Mutex
	products map[string]*types.MasterProduct
	written  map[string][2]string // ean -> [description, brand]
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		products: make(map[string]*types.MasterProduct),
		written:  make(map[string][2]string),
	}
}

func (w *fakeWriter) MasterProduct(ctx context.Context, ean string) (*types.MasterProduct, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.products[ean], nil
}

func (w *fakeWriter) UpdateEnrichedFields(ctx context.Context, ean string, description, brand string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written[ean] = [2]string{description, brand}
	return nil
}

func TestICecatEnrichPersistsProductData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "demo-user", r.URL.Query().Get("UserName"))
		assert.Equal(t, "en", r.URL.Query().Get("Language"))
		assert.Equal(t, "4006381333931", r.URL.Query().Get("GTIN"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"GeneralInfo": {
					"Title": "Stabilo Boss Original",
					"Brand": "Stabilo",
					"SummaryDescription": {
						"LongSummaryDescription": "Chisel tip highlighter, yellow."
					}
				}
			}
		}`))
	}))
	defer server.Close()

	writer := newFakeWriter()
	provider := NewICecat(ICecatConfig{
		BaseURL:  server.URL,
		Username: "demo-user",
	}, httpx.NewClientDefault(), writer, zerolog.Nop())

	result, err := provider.Enrich(context.Background(), "4006381333931")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Zero(t, result.Cost, "icecat lookups are free")

	written := writer.written["4006381333931"]
	assert.Equal(t, "Chisel tip highlighter, yellow.", written[0])
	assert.Equal(t, "Stabilo", written[1])
}

func TestICecatEnrichMissingEntryIsSoftFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"GeneralInfo": {}}}`))
	}))
	defer server.Close()

	writer := newFakeWriter()
	provider := NewICecat(ICecatConfig{BaseURL: server.URL, Username: "demo-user"},
		httpx.NewClientDefault(), writer, zerolog.Nop())

	result, err := provider.Enrich(context.Background(), "0000000000017")
	require.NoError(t, err, "a missing catalog entry is not an error")
	assert.False(t, result.OK)
	assert.Empty(t, writer.written)
}

func TestICecatEnrichFallsBackToTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"GeneralInfo": {"Title": "Spiral notebook A4", "Brand": "Fokus"}}}`))
	}))
	defer server.Close()

	writer := newFakeWriter()
	provider := NewICecat(ICecatConfig{BaseURL: server.URL, Username: "demo-user"},
		httpx.NewClientDefault(), writer, zerolog.Nop())

	result, err := provider.Enrich(context.Background(), "9788953900011")
	require.NoError(t, err)
	assert.True(t, result.OK)

	written := writer.written["9788953900011"]
	assert.Equal(t, "Spiral notebook A4", written[0], "title stands in for a missing summary description")
}
