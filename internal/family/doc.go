// Package family infers canonical font families from messy declared names.
//
// Web pages rarely declare font families consistently: the same typeface can
// appear as "OpenSansBold-webfont", "open-sans_700", and "Open Sans". This
// package collapses those spellings into one canonical group by tokenizing
// the declared family (or, failing that, the filename), stripping trailing
// hash fragments and variant markers, and joining the remaining tokens into
// a fingerprint key.
//
// The fingerprint also captures weight and style hints found in the name
// ("bold", "italic", ...). Those hints fill in a record's effective weight
// and style when the CSS declaration carries only the defaults.
//
// Design decision: The heuristic lives here once and every surface (CLI
// views, selection, reports) calls through it, so grouping stays a pure
// function of the record list: same input, same groups, same order.
package family
