package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/fontrake/fontrake/internal/family"
)

// Column width limits for table cells. Long URLs and joined value lists
// would otherwise dominate the terminal.
const (
	maxFamilyWidth  = 28
	maxNameWidth    = 32
	maxURLWidth     = 76
	maxWeightsWidth = 20
	maxStylesWidth  = 18
	maxFormatsWidth = 14
	maxRangesWidth  = 24
)

// TableWriter outputs results as terminal tables. This is the default
// human-facing format.
type TableWriter struct {
	baseWriter
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the result's active view as a table, preceded by a short
// summary block.
func (w *TableWriter) Write(result *Result) (int, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Source: %s\n", result.Source)

	if result.TotalFound == 0 {
		fmt.Fprintf(&buf, "No fonts found\n")
		return w.output.Write(buf.Bytes())
	}

	fmt.Fprintf(&buf, "Selected fonts: %d of %d\n", result.SelectedCount, result.TotalFound)

	var err error
	if result.View == ViewFont {
		err = writeFontTable(&buf, result.Fonts)
	} else {
		fmt.Fprintf(&buf, "Grouped families: %d\n", result.FamilyCount)
		err = writeFamilyTable(&buf, result.Families)
	}
	if err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}

func writeFamilyTable(buf *bytes.Buffer, families []family.Group) error {
	buf.WriteString("\n")

	table := tablewriter.NewWriter(buf)
	table.Header("Family", "Files", "Variants", "Weights", "Styles", "Formats", "Indexes")

	for _, group := range families {
		err := table.Append([]string{
			truncateCell(group.Name, maxFamilyWidth),
			strconv.Itoa(group.Files),
			strconv.Itoa(group.Variants),
			compactJoin(group.Weights, maxWeightsWidth),
			compactJoin(group.Styles, maxStylesWidth),
			compactJoin(group.Formats, maxFormatsWidth),
			compactJoin(group.IndexRanges, maxRangesWidth),
		})
		if err != nil {
			return err
		}
	}

	return table.Render()
}

func writeFontTable(buf *bytes.Buffer, fonts []FontRow) error {
	buf.WriteString("\n")

	table := tablewriter.NewWriter(buf)
	table.Header("Index", "Family", "Name", "Weight", "Style", "Format", "URL")

	for _, font := range fonts {
		err := table.Append([]string{
			strconv.Itoa(font.Index),
			truncateCell(font.Family, maxFamilyWidth),
			truncateCell(font.Name, maxNameWidth),
			font.Weight,
			font.Style,
			string(font.Format),
			truncateCell(font.URL, maxURLWidth),
		})
		if err != nil {
			return err
		}
	}

	return table.Render()
}

// compactJoin joins values with commas, truncated to maxChars. Empty
// lists render as a dash so the cell is visibly empty rather than blank.
func compactJoin(values []string, maxChars int) string {
	if len(values) == 0 {
		return "-"
	}
	return truncateCell(strings.Join(values, ", "), maxChars)
}

// truncateCell shortens a value to maxWidth runes with a trailing ellipsis.
func truncateCell(input string, maxWidth int) string {
	runes := []rune(input)
	if len(runes) <= maxWidth {
		return input
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return string(runes[:maxWidth-3]) + "..."
}
