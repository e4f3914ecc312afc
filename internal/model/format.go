package model

import "strings"

// FontFormat identifies a web font container format.
// The zero value is not meaningful; use FormatUnknown for unrecognized input.
type FontFormat string

// Known font formats, ordered here from most to least preferred.
const (
	FormatWOFF2    FontFormat = "WOFF2"
	FormatWOFF     FontFormat = "WOFF"
	FormatOpenType FontFormat = "OPENTYPE"
	FormatTrueType FontFormat = "TRUETYPE"
	FormatEOT      FontFormat = "EOT"
	FormatSVG      FontFormat = "SVG"
	FormatUnknown  FontFormat = "UNKNOWN"
)

// ParseFormat normalizes a format hint (typically the value of a CSS
// format() function) into a FontFormat. Vendor spellings such as "otf",
// "ttf", and "embedded-opentype" are folded into their canonical formats.
func ParseFormat(raw string) FontFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "woff2":
		return FormatWOFF2
	case "woff":
		return FormatWOFF
	case "opentype", "otf":
		return FormatOpenType
	case "truetype", "ttf":
		return FormatTrueType
	case "eot", "embedded-opentype":
		return FormatEOT
	case "svg":
		return FormatSVG
	default:
		return FormatUnknown
	}
}

// FormatFromURL derives a format from the file extension of a URL,
// ignoring any query string or fragment.
func FormatFromURL(rawURL string) FontFormat {
	clean := rawURL
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	dot := strings.LastIndex(clean, ".")
	if dot < 0 {
		return FormatUnknown
	}
	return ParseFormat(clean[dot+1:])
}

// Rank returns the preference rank of the format. Lower is better; the
// extractor uses this to pick the best source out of a src list.
func (f FontFormat) Rank() int {
	switch f {
	case FormatWOFF2:
		return 0
	case FormatWOFF:
		return 1
	case FormatOpenType:
		return 2
	case FormatTrueType:
		return 3
	case FormatEOT:
		return 4
	case FormatSVG:
		return 5
	default:
		return 6
	}
}

// Extension returns the file extension conventionally used for the format,
// or an empty string for FormatUnknown.
func (f FontFormat) Extension() string {
	switch f {
	case FormatWOFF2:
		return "woff2"
	case FormatWOFF:
		return "woff"
	case FormatOpenType:
		return "otf"
	case FormatTrueType:
		return "ttf"
	case FormatEOT:
		return "eot"
	case FormatSVG:
		return "svg"
	default:
		return ""
	}
}
