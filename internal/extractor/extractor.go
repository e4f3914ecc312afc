package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/fontrake/fontrake/internal/model"
)

// Extraction limits and request defaults.
const (
	// MaxImportDepth bounds recursive @import traversal. Three levels is
	// enough for every font CDN chain seen in the wild (page -> stylesheet
	// -> provider import -> face file).
	MaxImportDepth = 3

	// DefaultUserAgent mimics a desktop browser. Several font CDNs serve
	// different CSS (or none) to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

	// DefaultTimeout is the overall per-request budget.
	DefaultTimeout = 30 * time.Second

	// DefaultConnectTimeout bounds connection establishment separately so
	// an unresponsive host fails fast.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultMaxBodySize limits how much of a page or stylesheet is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,text/css,*/*;q=0.8"
)

// ErrNoFonts is returned by surfaces that treat an empty discovery result
// as a failure (for example, download without anything to select from).
var ErrNoFonts = errors.New("no fonts were discovered on the page")

// Extractor discovers font records on a page. It is safe to reuse for
// multiple extractions; each Extract call owns its own traversal state.
type Extractor struct {
	// client performs all HTTP requests.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits response body reads.
	maxBodySize int64

	// extraHeaders are added to every request. Used for sites that gate
	// stylesheets behind custom headers.
	extraHeaders map[string]string

	// logger receives per-branch debug output. Import-chain failures are
	// logged here and otherwise swallowed.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient replaces the default HTTP client. Used by tests and by
// callers that need custom transport settings.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		e.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(e *Extractor) {
		e.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(e *Extractor) {
		e.maxBodySize = size
	}
}

// WithLogger sets the logger for branch-level diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithExtraHeaders adds custom headers to every request.
func WithExtraHeaders(headers map[string]string) Option {
	return func(e *Extractor) {
		e.extraHeaders = headers
	}
}

// New creates an Extractor with browser-like defaults.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: DefaultConnectTimeout,
				}).DialContext,
			},
		},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract fetches the page at rawURL and returns every discovered font
// record, URL-deduplicated (first occurrence wins) and canonically sorted.
// rawURL must be absolute; use NormalizeTarget on user input first.
//
// Only the initial page fetch can fail extraction. Stylesheet branches
// that cannot be fetched or parsed contribute nothing and are skipped.
func (e *Extractor) Extract(ctx context.Context, rawURL string) ([]model.FontRecord, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL %q: %w", rawURL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q (only http and https are fetched)", target.Scheme)
	}

	page, err := e.fetchText(ctx, target.String(), target.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", target, err)
	}

	t := &traversal{
		extractor: e,
		pageURL:   target,
		visited:   make(map[string]struct{}),
	}
	t.walk(ctx, doc)

	for _, stylesheet := range t.stylesheets {
		t.fetchAndScan(ctx, stylesheet, 0)
	}

	records := dedupeByURL(t.records)
	model.SortRecords(records)
	return records, nil
}

// traversal holds the state of one Extract call: the accumulated records,
// the pending stylesheet queue, and the visited-URL cycle guard.
type traversal struct {
	extractor   *Extractor
	pageURL     *url.URL
	records     []model.FontRecord
	stylesheets []*url.URL
	visited     map[string]struct{}
}

// walk scans the DOM for <style> blocks and font-related <link> elements.
func (t *traversal) walk(ctx context.Context, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "style":
			t.scanInlineStyle(ctx, n)
		case "link":
			t.scanLink(n)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.walk(ctx, c)
	}
}

// scanInlineStyle scans a <style> element's text. Imports found inline
// start the recursive chain at depth zero.
func (t *traversal) scanInlineStyle(ctx context.Context, n *html.Node) {
	var css strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			css.WriteString(c.Data)
			css.WriteString("\n")
		}
	}

	records, imports := scanCSS(css.String(), t.pageURL, t.pageURL.String())
	t.records = append(t.records, records...)
	for _, target := range imports {
		t.fetchAndScan(ctx, target, 0)
	}
}

// scanLink classifies a <link> element. Stylesheets (rel=stylesheet, or
// rel=preload with as=style) are queued for fetching; preloaded and
// prefetched fonts (as=font) become standalone records with default
// weight and style.
func (t *traversal) scanLink(n *html.Node) {
	rel := strings.ToLower(attr(n, "rel"))
	href := attr(n, "href")
	as := strings.ToLower(attr(n, "as"))

	if href == "" {
		return
	}

	isStylesheet := hasRelToken(rel, "stylesheet")
	isPreload := hasRelToken(rel, "preload")
	isPrefetch := hasRelToken(rel, "prefetch")

	switch {
	case isStylesheet || (isPreload && as == "style"):
		if target, ok := resolveStylesheetRef(t.pageURL, href); ok {
			t.stylesheets = append(t.stylesheets, target)
		}
	case (isPreload || isPrefetch) && as == "font":
		resolved, ok := resolveRef(t.pageURL, href)
		if !ok {
			return
		}
		name := fileNameFromURL(resolved)
		if name == "" {
			name = "preloaded-font"
		}
		t.records = append(t.records, model.FontRecord{
			Name:    name,
			Family:  familyFromName(name),
			Format:  model.FormatFromURL(resolved),
			URL:     resolved,
			Weight:  model.DefaultWeight,
			Style:   model.DefaultStyle,
			Referer: t.pageURL.String(),
		})
	}
}

// fetchAndScan fetches one stylesheet and recurses into its imports.
// The depth bound and the visited set are the only guards against
// unbounded traversal; any fetch failure silently ends the branch.
func (t *traversal) fetchAndScan(ctx context.Context, stylesheet *url.URL, depth int) {
	if depth > MaxImportDepth {
		return
	}

	key := normalizeURL(stylesheet.String())
	if _, seen := t.visited[key]; seen {
		return
	}
	t.visited[key] = struct{}{}

	css, err := t.extractor.fetchText(ctx, stylesheet.String(), t.pageURL.String())
	if err != nil {
		t.extractor.logger.Debug("skipping unreachable stylesheet",
			"url", stylesheet.String(),
			"depth", depth,
			"error", err,
		)
		return
	}

	records, imports := scanCSS(css, stylesheet, t.pageURL.String())
	t.records = append(t.records, records...)

	for _, target := range imports {
		t.fetchAndScan(ctx, target, depth+1)
	}
}

// fetchText performs one GET and returns the body as text. Non-2xx
// responses are errors.
func (e *Extractor) fetchText(ctx context.Context, rawURL, referer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", acceptHeader)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	for key, value := range e.extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("request failed with status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed reading response body: %w", err)
	}
	return string(body), nil
}

// dedupeByURL keeps the first record for each URL.
func dedupeByURL(records []model.FontRecord) []model.FontRecord {
	seen := make(map[string]struct{}, len(records))
	deduped := make([]model.FontRecord, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.URL]; ok {
			continue
		}
		seen[record.URL] = struct{}{}
		deduped = append(deduped, record)
	}
	return deduped
}

// attr retrieves an attribute value from an HTML node.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hasRelToken reports whether a rel attribute contains the given
// whitespace-separated token.
func hasRelToken(rel, token string) bool {
	for _, field := range strings.Fields(rel) {
		if field == token {
			return true
		}
	}
	return false
}
