package family

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fontrake/fontrake/internal/model"
)

// Group is one inferred family: every record whose fingerprint key matches,
// plus statistics derived from the members' effective variants.
type Group struct {
	// Key is the fingerprint key the group accumulated under.
	Key string `json:"key"`

	// Name is the display name derived from the fingerprint tokens.
	Name string `json:"name"`

	// Aliases are the distinct raw family strings observed on members.
	Aliases []string `json:"aliases"`

	// Files is the number of member records.
	Files int `json:"files"`

	// Variants is the number of distinct (weight, style) pairs.
	Variants int `json:"variants"`

	// Weights, Styles, and Formats are the sorted sets of effective values
	// observed across members.
	Weights []string `json:"weights"`
	Styles  []string `json:"styles"`
	Formats []string `json:"formats"`

	// Indices are the member record positions, ascending.
	Indices []int `json:"indices"`

	// IndexRanges is a compact rendering of Indices with consecutive runs
	// collapsed, e.g. ["0-2", "5"].
	IndexRanges []string `json:"index_ranges"`

	// Fonts are the member records annotated with their effective variant,
	// ordered by index.
	Fonts []Entry `json:"fonts"`
}

// Entry is a group member: one record with its resolved weight and style.
type Entry struct {
	Index        int              `json:"index"`
	Name         string           `json:"name"`
	SourceFamily string           `json:"source_family"`
	Weight       string           `json:"weight"`
	Style        string           `json:"style"`
	Format       model.FontFormat `json:"format"`
	URL          string           `json:"url"`
	Referer      string           `json:"referer"`
}

// accumulator gathers one group's members before the output is frozen.
type accumulator struct {
	key         string
	name        string
	aliases     map[string]struct{}
	variantKeys map[string]struct{}
	weights     map[string]struct{}
	styles      map[string]struct{}
	formats     map[string]struct{}
	indices     []int
	fonts       []Entry
}

func newAccumulator(key, name string) *accumulator {
	return &accumulator{
		key:         key,
		name:        name,
		aliases:     make(map[string]struct{}),
		variantKeys: make(map[string]struct{}),
		weights:     make(map[string]struct{}),
		styles:      make(map[string]struct{}),
		formats:     make(map[string]struct{}),
	}
}

func (a *accumulator) group() Group {
	sort.Ints(a.indices)
	sort.Slice(a.fonts, func(i, j int) bool { return a.fonts[i].Index < a.fonts[j].Index })

	return Group{
		Key:         a.key,
		Name:        a.name,
		Aliases:     sortedKeys(a.aliases),
		Files:       len(a.indices),
		Variants:    len(a.variantKeys),
		Weights:     sortedKeys(a.weights),
		Styles:      sortedKeys(a.styles),
		Formats:     sortedKeys(a.formats),
		Indices:     a.indices,
		IndexRanges: indexRanges(a.indices),
		Fonts:       a.fonts,
	}
}

// GroupAll groups every record in the list.
func GroupAll(records []model.FontRecord) []Group {
	indices := make([]int, len(records))
	for i := range records {
		indices[i] = i
	}
	return GroupRecords(records, indices)
}

// GroupRecords groups the records at the given positions. Out-of-range and
// duplicate indices are ignored. The result is ordered by lowercased
// display name, ties broken by fingerprint key, so grouping the same input
// twice yields identical output.
func GroupRecords(records []model.FontRecord, indices []int) []Group {
	unique := make([]int, 0, len(indices))
	seen := make(map[int]struct{}, len(indices))
	for _, index := range indices {
		if index < 0 || index >= len(records) {
			continue
		}
		if _, ok := seen[index]; ok {
			continue
		}
		seen[index] = struct{}{}
		unique = append(unique, index)
	}
	sort.Ints(unique)

	grouped := make(map[string]*accumulator)
	for _, index := range unique {
		record := records[index]
		fingerprint := Infer(record)
		weight := EffectiveWeight(record, fingerprint.WeightHint)
		style := EffectiveStyle(record, fingerprint.StyleHint)

		acc, ok := grouped[fingerprint.Key]
		if !ok {
			acc = newAccumulator(fingerprint.Key, fingerprint.Display)
			grouped[fingerprint.Key] = acc
		}

		acc.aliases[record.Family] = struct{}{}
		acc.variantKeys[weight+"/"+style] = struct{}{}
		acc.weights[weight] = struct{}{}
		acc.styles[style] = struct{}{}
		acc.formats[strings.ToUpper(string(record.Format))] = struct{}{}
		acc.indices = append(acc.indices, index)
		acc.fonts = append(acc.fonts, Entry{
			Index:        index,
			Name:         record.Name,
			SourceFamily: record.Family,
			Weight:       weight,
			Style:        style,
			Format:       record.Format,
			URL:          record.URL,
			Referer:      record.Referer,
		})
	}

	groups := make([]Group, 0, len(grouped))
	for _, acc := range grouped {
		groups = append(groups, acc.group())
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := strings.ToLower(groups[i].Name), strings.ToLower(groups[j].Name)
		if a != b {
			return a < b
		}
		return groups[i].Key < groups[j].Key
	})

	return groups
}

// SelectByNames returns the ascending indices of every record whose group
// matches one of the requested family names. Matching is case-insensitive
// and trimmed; a name matches a group when it equals the display name or
// any raw alias.
func SelectByNames(records []model.FontRecord, names []string) []int {
	if len(names) == 0 {
		return nil
	}

	requested := make(map[string]struct{}, len(names))
	for _, name := range names {
		requested[normalize(name)] = struct{}{}
	}

	selected := make(map[int]struct{})
	for _, group := range GroupAll(records) {
		_, matched := requested[normalize(group.Name)]
		if !matched {
			for _, alias := range group.Aliases {
				if _, ok := requested[normalize(alias)]; ok {
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}
		for _, index := range group.Indices {
			selected[index] = struct{}{}
		}
	}

	indices := make([]int, 0, len(selected))
	for index := range selected {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}

// indexRanges collapses consecutive index runs: [0,1,2,5] -> ["0-2", "5"].
func indexRanges(indices []int) []string {
	if len(indices) == 0 {
		return nil
	}

	ranges := make([]string, 0, len(indices))
	start, previous := indices[0], indices[0]

	for _, current := range indices[1:] {
		if current == previous+1 {
			previous = current
			continue
		}
		ranges = append(ranges, formatRange(start, previous))
		start, previous = current, current
	}

	return append(ranges, formatRange(start, previous))
}

func formatRange(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
