// Package selection resolves user selection criteria into record indices.
//
// Criteria are independent optional clauses; a record is selected when the
// select-all flag is set or when it matches any clause. Resolution is the
// deduplicated, ascending union across clauses. Invoking resolution with no
// active clause is a caller error, not an empty result: the distinction
// matters because presentation surfaces treat "nothing selected" as a usage
// mistake and "criteria matched nothing" as a data outcome.
package selection

import (
	"errors"
	"sort"
	"strings"

	"github.com/fontrake/fontrake/internal/family"
	"github.com/fontrake/fontrake/internal/model"
)

// Selection resolution errors, checked with errors.Is.
var (
	// ErrNoCriteria is returned when no clause is active.
	ErrNoCriteria = errors.New("no selection criteria: use all, families, names, urls, or indices")

	// ErrNoMatch is returned when active criteria selected zero records.
	ErrNoMatch = errors.New("no fonts matched the selection criteria")
)

// Criteria describes which records the user wants. All clauses are
// optional and independent.
type Criteria struct {
	// All selects every record.
	All bool

	// Families selects whole inferred family groups. A value matches a
	// group's display name or any of its raw aliases, case-insensitively.
	Families []string

	// Names selects records by exact (case-insensitive) record name.
	Names []string

	// URLs selects records by exact URL.
	URLs []string

	// Indices selects records by position in the discovery result.
	// Out-of-range values are ignored.
	Indices []int
}

// Active reports whether at least one clause is set.
func (c Criteria) Active() bool {
	return c.All ||
		len(c.Families) > 0 ||
		len(c.Names) > 0 ||
		len(c.URLs) > 0 ||
		len(c.Indices) > 0
}

// Resolve returns the ascending, deduplicated indices of records matching
// the criteria. It returns ErrNoCriteria when no clause is active and
// ErrNoMatch when the active clauses select nothing.
func Resolve(records []model.FontRecord, criteria Criteria) ([]int, error) {
	if !criteria.Active() {
		return nil, ErrNoCriteria
	}

	selected := make(map[int]struct{})

	if criteria.All {
		for i := range records {
			selected[i] = struct{}{}
		}
	}

	for _, index := range family.SelectByNames(records, criteria.Families) {
		selected[index] = struct{}{}
	}

	nameSet := normalizedSet(criteria.Names)
	urlSet := make(map[string]struct{}, len(criteria.URLs))
	for _, rawURL := range criteria.URLs {
		urlSet[rawURL] = struct{}{}
	}

	for index, record := range records {
		if _, ok := nameSet[normalize(record.Name)]; ok {
			selected[index] = struct{}{}
			continue
		}
		if _, ok := urlSet[record.URL]; ok {
			selected[index] = struct{}{}
		}
	}

	for _, index := range criteria.Indices {
		if index >= 0 && index < len(records) {
			selected[index] = struct{}{}
		}
	}

	if len(selected) == 0 {
		return nil, ErrNoMatch
	}

	indices := make([]int, 0, len(selected))
	for index := range selected {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices, nil
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[normalize(value)] = struct{}{}
	}
	return set
}

func normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
