package family

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fontrake/fontrake/internal/model"
)

// Fingerprint is the canonical identity derived from a record's declared
// family name or filename.
type Fingerprint struct {
	// Key is the grouping key: cleaned lowercase tokens joined by spaces.
	Key string

	// Display is the human-facing family name built from the same tokens.
	Display string

	// WeightHint is the numeric weight implied by a trailing name token
	// ("bold" -> "700"), or empty when the name carries no weight.
	WeightHint string

	// StyleHint is the style implied by a trailing name token ("italic",
	// "oblique"), or empty.
	StyleHint string
}

// weightSynonyms maps weight keywords embedded in names to CSS numeric
// weights.
var weightSynonyms = map[string]string{
	"thin":       "100",
	"extralight": "200",
	"ultralight": "200",
	"semilight":  "300",
	"light":      "300",
	"regular":    "400",
	"normal":     "400",
	"medium":     "500",
	"semibold":   "600",
	"demibold":   "600",
	"bold":       "700",
	"extrabold":  "800",
	"ultrabold":  "800",
	"heavy":      "900",
	"black":      "900",
}

// knownExtensions are stripped before tokenizing so "roboto.woff2" and
// "roboto" fingerprint identically.
var knownExtensions = []string{".woff2", ".woff", ".ttf", ".otf", ".eot", ".svg"}

// Infer derives the fingerprint for a record. The declared family is
// tokenized first; if nothing survives cleanup, the filename is tokenized
// instead, and hints still missing after the first pass are merged in from
// the filename pass. A record yielding no tokens at all fingerprints as
// "unknown".
func Infer(record model.FontRecord) Fingerprint {
	tokens := tokenize(record.Family)
	tokens = dropTrailingJunk(tokens)
	tokens, weightHint, styleHint := stripVariantTokens(tokens)

	if len(tokens) == 0 {
		tokens = tokenize(record.Name)
		tokens = dropTrailingJunk(tokens)
		var fallbackWeight, fallbackStyle string
		tokens, fallbackWeight, fallbackStyle = stripVariantTokens(tokens)
		if weightHint == "" {
			weightHint = fallbackWeight
		}
		if styleHint == "" {
			styleHint = fallbackStyle
		}
	}

	if len(tokens) == 0 {
		tokens = []string{"unknown"}
	}

	display := make([]string, len(tokens))
	for i, token := range tokens {
		display[i] = displayToken(token)
	}

	return Fingerprint{
		Key:        strings.Join(tokens, " "),
		Display:    strings.Join(display, " "),
		WeightHint: weightHint,
		StyleHint:  styleHint,
	}
}

// EffectiveWeight returns the weight to attribute to a record: the declared
// value when it normalizes to something other than the default, otherwise
// the fingerprint hint, otherwise the default.
//
// A record genuinely declaring "400" is indistinguishable from one that
// omitted font-weight, so a name-derived hint still overrides it.
func EffectiveWeight(record model.FontRecord, hint string) string {
	weight := NormalizeWeight(record.Weight)
	if weight != model.DefaultWeight {
		return weight
	}
	if hint != "" {
		return hint
	}
	return model.DefaultWeight
}

// EffectiveStyle is the style counterpart of EffectiveWeight.
func EffectiveStyle(record model.FontRecord, hint string) string {
	style := NormalizeStyle(record.Style)
	if style != model.DefaultStyle {
		return style
	}
	if hint != "" {
		return hint
	}
	return model.DefaultStyle
}

// NormalizeWeight maps a raw font-weight value to a numeric string where
// possible. Numeric values pass through as-is, keyword synonyms map to
// their numeric weight, and anything unrecognized is returned lowercased.
func NormalizeWeight(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return model.DefaultWeight
	}

	if value, err := strconv.Atoi(normalized); err == nil && value >= 0 {
		return strconv.Itoa(value)
	}

	if mapped, ok := weightSynonyms[normalized]; ok {
		return mapped
	}
	return normalized
}

// NormalizeStyle maps a raw font-style value to "italic", "oblique", or
// "normal". Substring matching wins over exact equality so values like
// "italic !important" or "oblique 14deg" still classify correctly.
func NormalizeStyle(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(normalized, "italic"):
		return "italic"
	case strings.Contains(normalized, "oblique"):
		return "oblique"
	default:
		return model.DefaultStyle
	}
}

// tokenize strips a known font extension, splits on non-alphanumeric
// boundaries, and further splits camelCase runs. Tokens come back
// lowercased.
func tokenize(input string) []string {
	source := stripKnownExtension(input)

	tokens := make([]string, 0, 4)
	var chunk strings.Builder
	for _, r := range source {
		if isASCIIAlphanumeric(r) {
			chunk.WriteRune(r)
			continue
		}
		if chunk.Len() > 0 {
			tokens = append(tokens, splitCamelChunk(chunk.String())...)
			chunk.Reset()
		}
	}
	if chunk.Len() > 0 {
		tokens = append(tokens, splitCamelChunk(chunk.String())...)
	}

	return tokens
}

// splitCamelChunk splits one alphanumeric run at camelCase boundaries.
// A break occurs between a lowercase letter and a following uppercase
// letter, and inside an uppercase run right before its last letter when a
// lowercase letter follows (so "XMLHttp" splits into "xml", "http").
func splitCamelChunk(chunk string) []string {
	if chunk == "" {
		return nil
	}

	runes := []rune(chunk)
	tokens := make([]string, 0, 2)
	start := 0

	for i := 1; i < len(runes); i++ {
		current, previous := runes[i], runes[i-1]
		var next rune
		hasNext := i+1 < len(runes)
		if hasNext {
			next = runes[i+1]
		}

		acronymToWord := isASCIIUpper(current) && isASCIIUpper(previous) &&
			hasNext && isASCIILower(next)
		lowerToUpper := isASCIIUpper(current) && isASCIILower(previous)

		if acronymToWord || lowerToUpper {
			if token := strings.ToLower(string(runes[start:i])); token != "" {
				tokens = append(tokens, token)
			}
			start = i
		}
	}

	if token := strings.ToLower(string(runes[start:])); token != "" {
		tokens = append(tokens, token)
	}
	return tokens
}

func stripKnownExtension(input string) string {
	lower := strings.ToLower(input)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			return input[:len(input)-len(ext)]
		}
	}
	return input
}

// dropTrailingJunk removes trailing tokens that carry no family identity:
// cache-busting hex hashes and the bare "s"/"p" markers some foundries
// append to filenames.
func dropTrailingJunk(tokens []string) []string {
	for len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		if isHashToken(last) || last == "s" || last == "p" {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		break
	}
	return tokens
}

// stripVariantTokens pops trailing style and weight tokens off the name.
// Each hint is captured at most once, and the scan stops at the first token
// that is neither; "Roboto-BoldItalic" yields style "italic" then weight
// "700", leaving just "roboto".
func stripVariantTokens(tokens []string) (remaining []string, weightHint, styleHint string) {
	for len(tokens) > 0 {
		last := tokens[len(tokens)-1]

		if styleHint == "" && (last == "italic" || last == "oblique") {
			styleHint = last
			tokens = tokens[:len(tokens)-1]
			continue
		}

		if weightHint == "" {
			if weight, ok := weightSynonyms[last]; ok {
				weightHint = weight
				tokens = tokens[:len(tokens)-1]
				continue
			}
		}

		break
	}
	return tokens, weightHint, styleHint
}

// displayToken renders one fingerprint token for display: digit runs stay
// as-is, tokens of one or two letters are upcased as probable acronyms,
// everything else is title-cased.
func displayToken(token string) string {
	if isDigits(token) {
		return token
	}
	if len(token) <= 2 {
		return strings.ToUpper(token)
	}
	return cases.Title(language.English).String(token)
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isHashToken reports whether a token looks like a content hash: at least
// six characters, all hex digits.
func isHashToken(token string) bool {
	if len(token) < 6 {
		return false
	}
	for _, r := range token {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func isASCIIAlphanumeric(r rune) bool {
	return isASCIILower(r) || isASCIIUpper(r) || (r >= '0' && r <= '9')
}

func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
