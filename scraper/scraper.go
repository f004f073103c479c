package scraper

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/partsdesk/tosshin/config"
	"github.com/partsdesk/tosshin/models"
)

// Scraper owns the browser session and the single page that every
// keyword lookup navigates. Lookups are sequential; Scraper is not
// safe for concurrent use.
type Scraper struct {
	browser    *rod.Browser
	page       *rod.Page
	router     *rod.HijackRouter
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	preflight  *preflightClient
}

// NewScraper launches a headless browser and prepares the lookup page.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.MustClose()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to open lookup page",
			err,
		)
	}

	// Stealth JS must be installed before the first navigation; it
	// persists across navigations of the same page.
	if scraperCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	// Same ordering constraint for the hijack router: mounted once,
	// active for every navigation this page performs.
	router := setupBlocking(page, scraperCfg.BlockedResourceTypes, scraperCfg.BlockAds)

	return &Scraper{
		browser:    browser,
		page:       page,
		router:     router,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		preflight:  newPreflightClient(browserCfg.Proxy),
	}, nil
}

// searchURL builds the parts-search URL for a keyword.
func (s *Scraper) searchURL(keyword string) string {
	return fmt.Sprintf(s.scraperCfg.SearchURL, url.QueryEscape(keyword))
}

// Close stops the hijack router and kills the browser process.
// Call this on shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: closing browser")
	if s.router != nil {
		_ = s.router.Stop()
	}
	_ = s.page.Close()
	s.browser.MustClose()
	slog.Info("scraper shutdown complete")
}
