package model

import (
	"sort"
	"strconv"
	"strings"
)

// Default values applied when a font-face block omits a declaration.
const (
	// DefaultWeight is the CSS default font-weight.
	DefaultWeight = "400"

	// DefaultStyle is the CSS default font-style.
	DefaultStyle = "normal"
)

// FontRecord describes one discovered web font source.
//
// Records are immutable after creation. Identity for deduplication is the
// URL: when two font-face rules reference the same URL, the first record
// wins and later duplicates are discarded.
type FontRecord struct {
	// Name is the filename derived from the URL, or a synthesized name for
	// inline data payloads and extension-less URLs.
	Name string `json:"name"`

	// Family is the raw font-family string as declared in CSS. It may be
	// inconsistent across records of the same actual family; the family
	// package derives canonical groupings from it.
	Family string `json:"family"`

	// Format is the canonical container format.
	Format FontFormat `json:"format"`

	// URL is the absolute network URL, or the inline data payload itself
	// for data: sources.
	URL string `json:"url"`

	// Weight is the raw font-weight value ("400" when absent).
	Weight string `json:"weight"`

	// Style is the raw font-style value ("normal" when absent).
	Style string `json:"style"`

	// Referer is the URL of the page or stylesheet that referenced the
	// font. It is replayed as the Referer header when downloading.
	Referer string `json:"referer"`
}

// IsInline reports whether the record's URL carries its content directly
// instead of pointing at a network resource.
func (r FontRecord) IsInline() bool {
	return strings.HasPrefix(r.URL, "data:")
}

// SortRecords sorts records in the canonical discovery order: family
// (case-insensitive), normal style before italic, weights nearest 400
// first, then name and URL as tiebreakers. The sort is stable so equal
// records keep their discovery order.
func SortRecords(records []FontRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return lessRecord(records[i], records[j])
	})
}

func lessRecord(a, b FontRecord) bool {
	af, bf := strings.ToLower(a.Family), strings.ToLower(b.Family)
	if af != bf {
		return af < bf
	}

	ai, bi := isItalic(a.Style), isItalic(b.Style)
	if ai != bi {
		return !ai
	}

	ad, bd := weightDistance(a.Weight), weightDistance(b.Weight)
	if ad != bd {
		return ad < bd
	}

	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	return a.URL < b.URL
}

func isItalic(style string) bool {
	return strings.Contains(strings.ToLower(style), "italic")
}

// weightDistance returns the distance of a raw weight value from the
// default weight 400. Non-numeric values fall back to 700 for anything
// bold-ish and 400 otherwise.
func weightDistance(weight string) int {
	normalized := strings.ToLower(strings.TrimSpace(weight))
	value := 400
	if parsed, err := strconv.Atoi(normalized); err == nil {
		value = parsed
	} else if strings.Contains(normalized, "bold") {
		value = 700
	}

	if value < 400 {
		return 400 - value
	}
	return value - 400
}
