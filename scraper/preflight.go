package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/partsdesk/tosshin/models"
	tls2 "github.com/refraction-networking/utls"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// preflightClient checks that the parts site answers at all before the
// browser run starts. It speaks HTTP with a Chrome TLS fingerprint
// (utls) so the check sees the same treatment the browser will.
type preflightClient struct {
	proxy string
}

func newPreflightClient(proxy string) *preflightClient {
	return &preflightClient{proxy: proxy}
}

// Preflight requests the search site's origin and fails the run early
// when the site is unreachable or answering with server errors. Any
// non-5xx response counts as reachable.
func (s *Scraper) Preflight(ctx context.Context) error {
	u, err := url.Parse(fmt.Sprintf(s.scraperCfg.SearchURL, ""))
	if err != nil {
		return models.NewScrapeError(
			models.ErrCodeInvalidInput, "invalid search URL template", err)
	}
	origin := u.Scheme + "://" + u.Host
	return s.preflight.check(ctx, origin)
}

func (c *preflightClient) check(ctx context.Context, target string) error {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	if c.proxy != "" {
		if proxyURL, err := url.Parse(c.proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return models.NewScrapeError(
			models.ErrCodePreflight, "failed to build preflight request", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return models.NewScrapeError(
			models.ErrCodePreflight, "parts site is unreachable", err)
	}
	defer resp.Body.Close()

	// Drain a bounded amount so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode >= 500 {
		return models.NewScrapeError(
			models.ErrCodePreflight,
			fmt.Sprintf("parts site answered HTTP %d", resp.StatusCode),
			nil)
	}
	return nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
