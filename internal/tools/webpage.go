package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/util"
	"github.com/ppiankov/verifact/internal/worker"
)

// ErrRobotsDisallowed is the cause reported when robots.txt forbids a fetch
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// WebPageFetcher downloads a page and returns its visible text
type WebPageFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxChars   int
	robots     *util.RobotsChecker // nil unless robots.txt compliance is on
	limiter    *worker.HostLimiter // optional
	logger     *zap.Logger
}

// NewWebPageFetcher creates the web page tool.
// transport may be nil to use util.NewTransport(cfg); limiter may be nil.
func NewWebPageFetcher(cfg model.HTTPConfig, transport http.RoundTripper, limiter *worker.HostLimiter, logger *zap.Logger) *WebPageFetcher {
	if transport == nil {
		transport = util.NewTransport(cfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 5_000_000
	}
	maxChars := cfg.MaxTextChars
	if maxChars <= 0 {
		maxChars = 5000
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}

	f := &WebPageFetcher{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		maxChars:   maxChars,
		limiter:    limiter,
		logger:     logger.With(zap.String("tool", string(model.ToolWebPage))),
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(client, userAgent, logger)
	}
	return f
}

// Spec describes the tool
func (f *WebPageFetcher) Spec() Spec {
	return Spec{
		ID:          model.ToolWebPage,
		Name:        "Web Scraping Tool",
		Description: "Extract content from web pages for fact-checking",
		Argument:    "url",
		ArgumentDoc: "Website URL to scrape",
	}
}

// Invoke fetches reference and returns "Web Content from {url}:\n\n{text}"
func (f *WebPageFetcher) Invoke(ctx context.Context, reference string) Result {
	reference = strings.TrimSpace(reference)

	text, err := f.fetchText(ctx, reference)
	if err != nil {
		f.logger.Debug("fetch failed", zap.String("url", reference), zap.Error(err))
		return Fail(model.ToolWebPage, fmt.Sprintf("Error scraping website %s: %v", reference, err))
	}

	return Ok(model.ToolWebPage, fmt.Sprintf("Web Content from %s:\n\n%s", reference, text))
}

func (f *WebPageFetcher) fetchText(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL has no host")
	}

	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", ErrRobotsDisallowed
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body := io.LimitReader(resp.Body, f.maxBytes)
	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	text, err := ExtractText(utf8Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	f.logger.Debug("page fetched",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("chars", len([]rune(text))))

	return Truncate(text, f.maxChars), nil
}
