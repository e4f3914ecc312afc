package report

import (
	"github.com/fontrake/fontrake/internal/family"
	"github.com/fontrake/fontrake/internal/model"
)

// View selects which shape of a result is rendered.
type View string

const (
	// ViewFamily renders one row per inferred family group.
	ViewFamily View = "family"

	// ViewFont renders one row per font record.
	ViewFont View = "font"
)

// ParseView maps a user-given view name to a View. Unrecognized input
// falls back to the family view.
func ParseView(raw string) View {
	if raw == string(ViewFont) {
		return ViewFont
	}
	return ViewFamily
}

// FontRow is one record in the font view, flattened with its inferred
// family name.
type FontRow struct {
	Index        int              `json:"index"`
	Family       string           `json:"family"`
	SourceFamily string           `json:"source_family"`
	Name         string           `json:"name"`
	Weight       string           `json:"weight"`
	Style        string           `json:"style"`
	Format       model.FontFormat `json:"format"`
	URL          string           `json:"url"`
	Referer      string           `json:"referer"`
}

// Result is the presentation-ready shape of one discovery pass. Exactly
// one of Families and Fonts is populated, matching View.
type Result struct {
	Source        string         `json:"source"`
	TotalFound    int            `json:"total_found"`
	SelectedCount int            `json:"selected_count"`
	View          View           `json:"view"`
	FamilyCount   int            `json:"family_count"`
	Families      []family.Group `json:"families"`
	Fonts         []FontRow      `json:"fonts"`
}

// NewResult builds a Result from inferred groups. totalFound is the full
// discovery count; the groups may cover a selected subset of it.
func NewResult(source string, totalFound int, view View, groups []family.Group) *Result {
	selected := 0
	for _, group := range groups {
		selected += group.Files
	}

	result := &Result{
		Source:        source,
		TotalFound:    totalFound,
		SelectedCount: selected,
		View:          view,
		FamilyCount:   len(groups),
		Families:      []family.Group{},
		Fonts:         []FontRow{},
	}

	switch view {
	case ViewFont:
		for _, group := range groups {
			for _, font := range group.Fonts {
				result.Fonts = append(result.Fonts, FontRow{
					Index:        font.Index,
					Family:       group.Name,
					SourceFamily: font.SourceFamily,
					Name:         font.Name,
					Weight:       font.Weight,
					Style:        font.Style,
					Format:       font.Format,
					URL:          font.URL,
					Referer:      font.Referer,
				})
			}
		}
	default:
		result.Families = groups
	}

	return result
}

// EmptyResult builds the Result for a discovery pass that found nothing.
func EmptyResult(source string, view View) *Result {
	return &Result{
		Source:   source,
		View:     view,
		Families: []family.Group{},
		Fonts:    []FontRow{},
	}
}
