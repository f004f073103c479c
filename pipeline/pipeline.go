package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/partsdesk/tosshin/models"
	"golang.org/x/time/rate"
)

// ScreenshotDirName is the subfolder of the output directory that
// receives one PNG per processed keyword.
const ScreenshotDirName = "Tosshin Screenshots"

// Searcher runs one keyword through the parts-search site.
type Searcher interface {
	Lookup(ctx context.Context, keyword string) (*models.LookupResult, error)
}

// RowWriter receives result rows in processing order.
type RowWriter interface {
	AppendRow(row models.ResultRow) error
}

// Summary counts what happened to each keyword in a run.
type Summary struct {
	Processed int // keywords that reached the browser
	Matched   int // keywords that produced a report row
	NoResult  int // keywords the site answered with nothing-found (or an unreadable table)
	Failed    int // keywords whose lookup errored
	Skipped   int // empty or whitespace-only entries
}

// Pipeline drives the sequential keyword loop: pace, look up, persist
// the screenshot, append the row.
type Pipeline struct {
	searcher      Searcher
	writer        RowWriter
	limiter       *rate.Limiter
	screenshotDir string
}

// New prepares a pipeline and creates the screenshot folder under
// outputDir. limiter may be nil to disable pacing.
func New(searcher Searcher, writer RowWriter, outputDir string, limiter *rate.Limiter) (*Pipeline, error) {
	dir := filepath.Join(outputDir, ScreenshotDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create screenshot folder: %w", err)
	}

	return &Pipeline{
		searcher:      searcher,
		writer:        writer,
		limiter:       limiter,
		screenshotDir: dir,
	}, nil
}

// Run processes the keywords in order. Per-keyword failures are logged
// and processing continues; Run itself only fails when the context is
// canceled or a row cannot be written to the report.
func (p *Pipeline) Run(ctx context.Context, keywords []string) (*Summary, error) {
	summary := &Summary{}

	if len(keywords) == 0 {
		slog.Warn("no keywords provided, skipping data fetch")
		return summary, nil
	}
	slog.Info("fetching data for keywords", "count", len(keywords))

	for _, raw := range keywords {
		keyword := strings.TrimSpace(raw)
		if keyword == "" {
			slog.Warn("empty search keyword encountered, skipping")
			summary.Skipped++
			continue
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return summary, err
			}
		} else if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Processed++

		result, err := p.searcher.Lookup(ctx, keyword)
		if err != nil {
			slog.Error("keyword lookup failed", "keyword", keyword, "error", err)
			summary.Failed++
			continue
		}

		p.saveScreenshot(keyword, result.Screenshot)

		if result.Fields == nil {
			slog.Warn("no result found for keyword", "keyword", keyword)
			summary.NoResult++
			continue
		}

		row := models.ResultRow{
			Keyword: keyword,
			Maker:   result.Fields.Maker,
			Weight:  result.Fields.Weight,
			Price:   result.Fields.Price,
			URL:     result.FinalURL,
		}
		if err := p.writer.AppendRow(row); err != nil {
			return summary, err
		}
		summary.Matched++
		slog.Info("extracted data",
			"keyword", keyword,
			"maker", row.Maker,
			"weight", row.Weight,
			"price", row.Price,
		)
	}

	return summary, nil
}

// saveScreenshot writes the keyword's screenshot PNG. A write failure
// costs the screenshot, not the row.
func (p *Pipeline) saveScreenshot(keyword string, png []byte) {
	if len(png) == 0 {
		return
	}
	path := filepath.Join(p.screenshotDir, keyword+" screenshot.png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		slog.Error("failed to save screenshot", "path", path, "error", err)
		return
	}
	slog.Debug("screenshot saved", "path", path)
}
