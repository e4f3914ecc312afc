package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fontrake/fontrake/internal/model"
)

// Patterns for the two CSS constructs extraction cares about. Both are
// written to survive minified stylesheets: case-insensitive, dot matches
// newline, non-greedy bodies.
var (
	fontFaceRE = regexp.MustCompile(`(?is)@font-face\s*\{(.*?)\}`)
	importRE   = regexp.MustCompile(`(?is)@import\s+(?:url\(\s*['"]?([^'")]+)['"]?\s*\)|['"]([^'"]+)['"])\s*[^;]*;`)
	srcURLRE   = regexp.MustCompile(`(?is)url\(\s*['"]?([^'")]+)['"]?\s*\)\s*(?:format\(\s*['"]?([^'")]+)['"]?\s*\))?`)
)

// scanCSS extracts font records and import targets from one CSS text.
// baseURL anchors relative references; referer is the page URL recorded on
// every produced record.
func scanCSS(css string, baseURL *url.URL, referer string) ([]model.FontRecord, []*url.URL) {
	var records []model.FontRecord
	var imports []*url.URL

	for _, capture := range importRE.FindAllStringSubmatch(css, -1) {
		raw := capture[1]
		if raw == "" {
			raw = capture[2]
		}
		if target, ok := resolveStylesheetRef(baseURL, raw); ok {
			imports = append(imports, target)
		}
	}

	for _, capture := range fontFaceRE.FindAllStringSubmatch(css, -1) {
		declarations := parseDeclarations(capture[1])

		family := unquoteFamily(declarations["font-family"])
		if family == "" {
			continue
		}

		src, ok := declarations["src"]
		if !ok {
			continue
		}
		source, ok := pickBestSource(src, baseURL)
		if !ok {
			continue
		}

		name := fileNameFromURL(source.url)
		if name == "" {
			if strings.HasPrefix(source.url, "data:") {
				name = slugify(family) + "-embedded"
			} else {
				name = slugify(family) + "-" + strings.ToLower(string(source.format))
			}
		}

		weight := declarations["font-weight"]
		if weight == "" {
			weight = model.DefaultWeight
		}
		style := declarations["font-style"]
		if style == "" {
			style = model.DefaultStyle
		}

		records = append(records, model.FontRecord{
			Name:    name,
			Family:  family,
			Format:  source.format,
			URL:     source.url,
			Weight:  weight,
			Style:   style,
			Referer: referer,
		})
	}

	return records, imports
}

// parseDeclarations splits a font-face rule body into name/value pairs.
// The scanner tracks parenthesis depth and single/double quote state so
// that semicolons inside url(...) or quoted strings are not mistaken for
// declaration boundaries. Backslash escapes pass through unaltered.
func parseDeclarations(block string) map[string]string {
	declarations := make(map[string]string)

	var current strings.Builder
	parenDepth := 0
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, ch := range block {
		if escaped {
			current.WriteRune(ch)
			escaped = false
			continue
		}

		switch {
		case ch == '\\':
			current.WriteRune(ch)
			escaped = true
			continue
		case ch == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
		case ch == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
		case !inSingleQuote && !inDoubleQuote:
			if ch == '(' {
				parenDepth++
			} else if ch == ')' && parenDepth > 0 {
				parenDepth--
			}
		}

		if ch == ';' && parenDepth == 0 && !inSingleQuote && !inDoubleQuote {
			addDeclaration(declarations, current.String())
			current.Reset()
			continue
		}

		current.WriteRune(ch)
	}
	addDeclaration(declarations, current.String())

	return declarations
}

func addDeclaration(declarations map[string]string, raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return
	}

	name, value, found := strings.Cut(trimmed, ":")
	if !found {
		return
	}
	declarations[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
}

// sourceCandidate is one url()/format() pair from a src list.
type sourceCandidate struct {
	url    string
	format model.FontFormat
}

// pickBestSource chooses the preferred source from a src declaration value.
// Rank decides (WOFF2 best), order of appearance breaks ties.
func pickBestSource(srcValue string, baseURL *url.URL) (sourceCandidate, bool) {
	var best sourceCandidate
	found := false

	for _, capture := range srcURLRE.FindAllStringSubmatch(srcValue, -1) {
		raw := strings.TrimSpace(capture[1])
		if raw == "" {
			continue
		}

		resolved, ok := resolveRef(baseURL, raw)
		if !ok {
			continue
		}

		format := model.FormatUnknown
		if hint := strings.TrimSpace(capture[2]); hint != "" {
			format = model.ParseFormat(hint)
		}
		if format == model.FormatUnknown {
			format = model.FormatFromURL(raw)
		}

		candidate := sourceCandidate{url: resolved, format: format}
		if !found || candidate.format.Rank() < best.format.Rank() {
			best = candidate
			found = true
		}
	}

	return best, found
}

// unquoteFamily trims whitespace and surrounding quotes from a raw
// font-family value.
func unquoteFamily(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.Trim(trimmed, `"`)
	trimmed = strings.Trim(trimmed, "'")
	return trimmed
}
