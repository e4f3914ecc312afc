package extractor

import (
	"net/url"
	"strings"
)

// NormalizeTarget turns a user-given site reference into an absolute URL.
// References without an http(s) scheme get an https prefix, so "example.com"
// and "https://example.com" address the same target.
func NormalizeTarget(input string) string {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "https://" + trimmed
}

// resolveRef resolves a raw CSS/HTML reference against a base URL and
// returns it as a string. Inline data payloads pass through unchanged.
// Unresolvable references return ok=false and are skipped by callers; a
// broken reference is never fatal to extraction.
func resolveRef(base *url.URL, raw string) (string, bool) {
	if strings.HasPrefix(raw, "data:") {
		return raw, true
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if parsed.IsAbs() {
		return parsed.String(), true
	}
	return base.ResolveReference(parsed).String(), true
}

// resolveStylesheetRef is resolveRef for references that must be fetchable:
// data payloads cannot be stylesheets and resolve to nothing.
func resolveStylesheetRef(base *url.URL, raw string) (*url.URL, bool) {
	if strings.HasPrefix(raw, "data:") {
		return nil, false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if parsed.IsAbs() {
		return parsed, true
	}
	return base.ResolveReference(parsed), true
}

// normalizeURL normalizes a URL for the visited set. The same stylesheet
// can be referenced with different spellings; dropping the fragment and
// lowercasing scheme and host keeps the cycle guard from reprocessing it.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// fileNameFromURL returns the last path segment of a network URL, or ""
// for data payloads and URLs without a usable segment.
func fileNameFromURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "data:") {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(parsed.Path, "/")
	return segments[len(segments)-1]
}

// familyFromName derives a family guess from a filename by stripping the
// extension. Used for preloaded font links, which carry no CSS declaration.
func familyFromName(name string) string {
	if dot := strings.LastIndex(name, "."); dot > 0 {
		return name[:dot]
	}
	return name
}

// slugify lowercases alphanumerics and collapses runs of anything else to
// a single hyphen, trimmed at both ends. Used to synthesize names for
// records that have no filename.
func slugify(input string) string {
	var b strings.Builder
	previousWasSeparator := false

	for _, r := range input {
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
