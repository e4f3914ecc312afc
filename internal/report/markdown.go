package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown output
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Font Discovery Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + result.Source + "`"},
			{"Fonts found", strconv.Itoa(result.TotalFound)},
			{"Fonts selected", strconv.Itoa(result.SelectedCount)},
			{"Families", strconv.Itoa(result.FamilyCount)},
		},
	})
	md.PlainText("")

	if result.TotalFound == 0 {
		md.PlainText("No fonts were found on this page.")
		return len(md.String()), md.Build()
	}

	if result.View == ViewFont {
		w.writeFonts(md, result)
	} else {
		w.writeFamilies(md, result)
	}

	return len(md.String()), md.Build()
}

// writeFamilies writes the family view as a Markdown table.
func (w *MarkdownWriter) writeFamilies(md *markdown.Markdown, result *Result) {
	md.H2("Families")
	md.PlainText("")

	rows := make([][]string, 0, len(result.Families))
	for _, group := range result.Families {
		rows = append(rows, []string{
			group.Name,
			strconv.Itoa(group.Files),
			strconv.Itoa(group.Variants),
			joinOrDash(group.Weights),
			joinOrDash(group.Styles),
			joinOrDash(group.Formats),
			joinOrDash(group.IndexRanges),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Family", "Files", "Variants", "Weights", "Styles", "Formats", "Indexes"},
		Rows:   rows,
	})
}

// writeFonts writes the font view as a Markdown table.
func (w *MarkdownWriter) writeFonts(md *markdown.Markdown, result *Result) {
	md.H2("Fonts")
	md.PlainText("")

	rows := make([][]string, 0, len(result.Fonts))
	for _, font := range result.Fonts {
		rows = append(rows, []string{
			strconv.Itoa(font.Index),
			font.Family,
			font.Name,
			font.Weight,
			font.Style,
			string(font.Format),
			"`" + font.URL + "`",
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Index", "Family", "Name", "Weight", "Style", "Format", "URL"},
		Rows:   rows,
	})
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
