package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/partsdesk/tosshin/models"
	"github.com/ysmood/gson"
)

// Lookup runs one keyword through the parts search: navigate, wait for
// the page to settle, capture the rendered HTML and a screenshot, and
// extract the OEM fields.
//
// A page showing the nothing-found marker, or one whose result table
// cannot be read, returns a LookupResult with Fields == nil; the
// screenshot is still captured so the caller can persist it either
// way. Only navigation-level failures return an error.
func (s *Scraper) Lookup(ctx context.Context, keyword string) (*models.LookupResult, error) {
	target := s.searchURL(keyword)
	slog.Info("fetching keyword data", "keyword", keyword, "url", target)

	ctx, cancel := context.WithTimeout(ctx, s.scraperCfg.KeywordTimeout)
	defer cancel()
	p := s.page.Context(ctx)

	// Present the visit as a click-through from a search engine.
	if u, parseErr := url.Parse(target); parseErr == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{
				"Referer": "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()),
			}),
		}.Call(p)
	}

	if err := p.Navigate(target); err != nil {
		return nil, categorizeError(err, "navigation to search URL failed")
	}

	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", err,
		)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	shot, shotErr := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if shotErr != nil {
		// Screenshot loss does not invalidate the extracted row.
		slog.Warn("screenshot capture failed", "keyword", keyword, "error", shotErr)
		shot = nil
	}

	fields, extractErr := ExtractOEMFields(rawHTML)
	if extractErr != nil {
		slog.Error("failed to extract OEM data", "keyword", keyword, "error", extractErr)
		fields = nil
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = target
	}

	return &models.LookupResult{
		Fields:     fields,
		Screenshot: shot,
		FinalURL:   finalURL,
	}, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so callers
// can log the failure class.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "lookup canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
