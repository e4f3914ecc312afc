// Package main provides the entry point for the fontrake CLI.
//
// fontrake discovers web fonts referenced by a page, groups them into
// inferred families, and downloads selected font files.
//
// Usage:
//
//	fontrake inspect <url>
//	fontrake download <url> --family "Open Sans"
//
// See --help for all available options.
package main

// main is the entry point for fontrake.
func main() {
	Execute()
}
