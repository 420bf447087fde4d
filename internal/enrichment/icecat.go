package enrichment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	httpx "github.com/listino/catalog-service/internal/http"
)

// ICecatConfig configures the ICecat Live provider
type ICecatConfig struct {
	BaseURL  string // e.g. "https://live.icecat.biz/api"
	Username string
	Language string // ISO 639-1, defaults to "en"
}

// ICecat looks up product data in the ICecat open catalog by GTIN. Lookups
// are free, so reported cost is always zero.
type ICecat struct {
	config ICecatConfig
	client *httpx.Client
	writer ProductWriter
	logger zerolog.Logger
}

// NewICecat creates an ICecat provider backed by the given HTTP client
func NewICecat(cfg ICecatConfig, client *httpx.Client, writer ProductWriter, logger zerolog.Logger) *ICecat {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &ICecat{
		config: cfg,
		client: client,
		writer: writer,
		logger: logger.With().Str("provider", "icecat").Logger(),
	}
}

func (p *ICecat) Name() string { return "icecat" }

// icecatResponse covers the subset of the Live JSON payload we read
type icecatResponse struct {
	Data struct {
		GeneralInfo struct {
			Title string `json:"Title"`
			Brand string `json:"Brand"`
			SummaryDescription struct {
				LongSummaryDescription string `json:"LongSummaryDescription"`
			} `json:"SummaryDescription"`
		} `json:"GeneralInfo"`
	} `json:"data"`
}

// Enrich fetches the ICecat record for the EAN and persists title, brand and
// description onto the master product. A missing catalog entry is a soft
// failure (OK=false, no error) so the run can continue with other items.
func (p *ICecat) Enrich(ctx context.Context, ean string) (Result, error) {
	reqURL := fmt.Sprintf("%s?UserName=%s&Language=%s&GTIN=%s",
		p.config.BaseURL,
		url.QueryEscape(p.config.Username),
		url.QueryEscape(p.config.Language),
		url.QueryEscape(ean))

	var payload icecatResponse
	if err := p.client.GetJSON(ctx, reqURL, &payload); err != nil {
		return Result{}, fmt.Errorf("icecat lookup for %s: %w", ean, err)
	}

	info := payload.Data.GeneralInfo
	if info.Title == "" && info.Brand == "" {
		p.logger.Debug().Str("ean", ean).Msg("No ICecat entry")
		return Result{OK: false}, nil
	}

	description := info.SummaryDescription.LongSummaryDescription
	if description == "" {
		description = info.Title
	}

	if err := p.writer.UpdateEnrichedFields(ctx, ean, description, info.Brand); err != nil {
		return Result{}, fmt.Errorf("persist enrichment for %s: %w", ean, err)
	}

	p.logger.Debug().Str("ean", ean).Str("brand", info.Brand).Msg("Enriched from ICecat")
	return Result{OK: true}, nil
}
