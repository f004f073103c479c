package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/partsdesk/tosshin/config"
	"github.com/partsdesk/tosshin/pipeline"
	"github.com/partsdesk/tosshin/report"
	"github.com/partsdesk/tosshin/scraper"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	outputDir    string
	keywordsFile string
	headful      bool
)

var rootCmd = &cobra.Command{
	Use:   "tosshin [keywords...]",
	Short: "Scrape the Tosshin parts search and write an Excel report",
	Long: `tosshin drives a headless browser through the Tosshin parts-lookup
site for each keyword, extracts maker, weight and price from the first
OEM result, captures a screenshot of every result page, and writes the
collected rows into "Tosshin data.xlsx" in the output directory.

Keywords come from the command line, a keywords file, or both.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "output directory for the workbook and screenshots")
	rootCmd.Flags().StringVarP(&keywordsFile, "keywords", "f", "", "file with one search keyword per line")
	rootCmd.Flags().BoolVar(&headful, "headful", false, "run the browser with a visible window (debug)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()
	if headful {
		cfg.Browser.Headless = false
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("tosshin starting",
		"outputDir", outputDir,
		"headless", cfg.Browser.Headless,
		"searchURL", cfg.Scraper.SearchURL,
	)

	// ── 3. Collect keywords ─────────────────────────────────────────
	keywords := append([]string(nil), args...)
	if keywordsFile != "" {
		fromFile, err := pipeline.ReadKeywordsFile(keywordsFile)
		if err != nil {
			return err
		}
		keywords = append(keywords, fromFile...)
	}
	if len(keywords) == 0 {
		return errors.New("no keywords given: pass them as arguments or via --keywords")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	// ── 4. Signal-driven cancellation ───────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	// ── 5. Launch browser ───────────────────────────────────────────
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
	if err != nil {
		return err
	}
	defer sc.Close()

	// ── 5b. Reachability preflight ──────────────────────────────────
	if !cfg.Scraper.SkipPreflight {
		if err := sc.Preflight(ctx); err != nil {
			return err
		}
	}

	// ── 6. Create workbook ──────────────────────────────────────────
	wb, err := report.NewWorkbook(outputDir)
	if err != nil {
		return err
	}

	// ── 7. Run the keyword loop ─────────────────────────────────────
	limiter := rate.NewLimiter(rate.Limit(cfg.Scraper.RequestsPerSecond), cfg.Scraper.Burst)
	pl, err := pipeline.New(sc, wb, outputDir, limiter)
	if err != nil {
		return err
	}

	summary, runErr := pl.Run(ctx, keywords)

	// ── 8. Save whatever was collected, even on a partial run ───────
	if err := wb.Save(); err != nil {
		slog.Error("failed to save workbook", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	slog.Info("tosshin scraping completed",
		"processed", summary.Processed,
		"matched", summary.Matched,
		"noResult", summary.NoResult,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"runtime", time.Since(start).Round(time.Millisecond).String(),
		"outputDir", outputDir,
	)

	return runErr
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
