package download

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fontrake/fontrake/internal/model"
)

// Request defaults for font fetches. Font files are larger than
// stylesheets, so the overall budget is wider than discovery's.
const (
	// DefaultTimeout is the overall per-fetch budget.
	DefaultTimeout = 45 * time.Second

	// DefaultConnectTimeout bounds connection establishment.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultUserAgent matches the agent used during discovery so a CDN
	// that served the stylesheet also serves the font.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

// ProgressFunc is invoked before each record attempt with the 1-based
// position, the total record count, and the record about to be fetched.
type ProgressFunc func(position, total int, record model.FontRecord)

// Report summarizes one download batch.
type Report struct {
	// Attempted is the number of records the batch tried to fetch.
	Attempted int `json:"attempted"`

	// SavedPaths lists every file written, in record order.
	SavedPaths []string `json:"saved_paths"`

	// Failures holds one description per failed record (name, url, error).
	Failures []string `json:"failures"`
}

// SuccessCount returns the number of records that were written to disk.
func (r Report) SuccessCount() int {
	return len(r.SavedPaths)
}

// Downloader fetches font bytes and writes them under a destination root.
type Downloader struct {
	client       *http.Client
	userAgent    string
	extraHeaders map[string]string
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		d.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(d *Downloader) {
		d.userAgent = ua
	}
}

// WithExtraHeaders adds custom headers to every font fetch.
func WithExtraHeaders(headers map[string]string) Option {
	return func(d *Downloader) {
		d.extraHeaders = headers
	}
}

// New creates a Downloader with browser-like defaults.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: DefaultConnectTimeout,
				}).DialContext,
			},
		},
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches every record and writes it under destRoot, one
// subdirectory per sanitized family name. Directory setup happens before
// any fetch; if it fails the batch aborts with zero attempts and a non-nil
// error. After setup, failures are per record and collected in the report.
// progress may be nil.
func (d *Downloader) Download(ctx context.Context, records []model.FontRecord, destRoot string, progress ProgressFunc) (Report, error) {
	var report Report

	if err := setupDirectories(destRoot, records); err != nil {
		return report, err
	}

	used := make(map[string]struct{})

	for i, record := range records {
		if progress != nil {
			progress(i+1, len(records), record)
		}
		report.Attempted++

		path, err := d.downloadOne(ctx, record, destRoot, used)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("%s (%s) -> %v", record.Name, record.URL, err))
			continue
		}
		report.SavedPaths = append(report.SavedPaths, path)
	}

	return report, nil
}

// setupDirectories creates the destination root and one subdirectory per
// distinct family before any fetch starts.
func setupDirectories(destRoot string, records []model.FontRecord) error {
	if err := os.MkdirAll(destRoot, 0o750); err != nil {
		return fmt.Errorf("could not create output directory %s: %w", destRoot, err)
	}

	seen := make(map[string]struct{})
	for _, record := range records {
		dir := familyDir(destRoot, record)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("could not create family directory %s: %w", dir, err)
		}
	}
	return nil
}

func familyDir(destRoot string, record model.FontRecord) string {
	component := sanitizeComponent(record.Family)
	if component == "" {
		component = "unknown"
	}
	return filepath.Join(destRoot, component)
}

func (d *Downloader) downloadOne(ctx context.Context, record model.FontRecord, destRoot string, used map[string]struct{}) (string, error) {
	var (
		data        []byte
		contentType string
		err         error
	)
	if record.IsInline() {
		data, contentType, err = decodeDataURL(record.URL)
	} else {
		data, contentType, err = d.fetchRemote(ctx, record)
	}
	if err != nil {
		return "", err
	}

	extension := extensionFor(record, contentType)
	path := uniquePath(familyDir(destRoot, record), fileStem(record), extension, used)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed writing file %s: %w", path, err)
	}
	return path, nil
}

// fetchRemote issues a GET for the record's URL. Referer and Origin are set
// from the referring page when present. A non-2xx status is a failure.
func (d *Downloader) fetchRemote(ctx context.Context, record model.FontRecord) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, record.URL, nil)
	if err != nil {
		return nil, "", err
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "*/*")
	if record.Referer != "" {
		req.Header.Set("Referer", record.Referer)
		if origin, ok := originOf(record.Referer); ok {
			req.Header.Set("Origin", origin)
		}
	}
	for key, value := range d.extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("HTTP %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response bytes: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// originOf derives an Origin header value (scheme://host) from a URL.
func originOf(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

// decodeDataURL decodes an inline data payload. The metadata segment
// selects base64 versus percent decoding and may carry a media type used
// later for extension sniffing.
func decodeDataURL(input string) ([]byte, string, error) {
	payload, ok := strings.CutPrefix(input, "data:")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URL: missing data: prefix")
	}

	meta, data, ok := strings.Cut(payload, ",")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URL: missing comma separator")
	}

	segments := strings.Split(meta, ";")
	isBase64 := false
	for _, segment := range segments {
		if strings.EqualFold(segment, "base64") {
			isBase64 = true
			break
		}
	}
	mimeType := segments[0]

	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode base64 font bytes: %w", err)
		}
		return decoded, mimeType, nil
	}

	decoded, err := url.PathUnescape(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode percent-encoded font bytes: %w", err)
	}
	return []byte(decoded), mimeType, nil
}

// extensionFor picks a file extension: declared format first, content-type
// sniffing second, a generic binary extension last.
func extensionFor(record model.FontRecord, contentType string) string {
	if ext := record.Format.Extension(); ext != "" {
		return ext
	}

	mime := strings.ToLower(contentType)
	switch {
	case strings.Contains(mime, "woff2"):
		return "woff2"
	case strings.Contains(mime, "woff"):
		return "woff"
	case strings.Contains(mime, "opentype") || strings.Contains(mime, "otf"):
		return "otf"
	case strings.Contains(mime, "truetype") || strings.Contains(mime, "ttf"):
		return "ttf"
	}
	return "bin"
}

// fileStem builds the destination name stem: sanitized name without its
// extension, then the sanitized weight and style when present.
func fileStem(record model.FontRecord) string {
	base := record.Name
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}

	stem := sanitizeComponent(base)
	if stem == "" {
		stem = "font"
	}

	if weight := sanitizeComponent(record.Weight); weight != "" {
		stem += "-" + weight
	}
	if style := sanitizeComponent(record.Style); style != "" {
		stem += "-" + style
	}
	return stem
}

// uniquePath returns the first free path for stem.extension in directory,
// appending -1, -2, ... on collision. A candidate is free only when it
// neither exists on disk nor was claimed earlier in this batch.
func uniquePath(directory, stem, extension string, used map[string]struct{}) string {
	for attempt := 0; ; attempt++ {
		name := stem
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d", stem, attempt)
		}
		candidate := filepath.Join(directory, name+"."+extension)

		if _, claimed := used[candidate]; claimed {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			continue
		}

		used[candidate] = struct{}{}
		return candidate
	}
}

// sanitizeComponent lowercases alphanumerics and collapses everything else
// to single hyphens, trimmed at both ends.
func sanitizeComponent(value string) string {
	var b strings.Builder
	previousWasSeparator := false

	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			previousWasSeparator = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			previousWasSeparator = false
		default:
			if !previousWasSeparator {
				b.WriteByte('-')
				previousWasSeparator = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
