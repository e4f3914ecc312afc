// Package report renders discovery results for terminal, file, and tool
// consumption.
//
// A Result is the presentation-ready shape of one discovery pass: source,
// counts, and either the family view (grouped aggregates) or the font view
// (flat per-record rows). Writers turn a Result into pretty tables, JSON,
// or Markdown; the Writer interface keeps the output destination and the
// format independent of each other.
package report
