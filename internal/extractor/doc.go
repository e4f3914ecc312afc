// Package extractor discovers web font sources referenced by a page.
//
// Discovery fetches the page over HTTP, walks the HTML for inline <style>
// blocks and <link> elements, and scans the reachable CSS text for
// font-face rules and import directives. Imports are followed recursively
// up to a fixed depth, with a visited-URL set guarding against import
// cycles. The result is a flat, URL-deduplicated, canonically sorted list
// of font records.
//
// Design decision: We parse the HTML with golang.org/x/net/html but scan
// CSS with regular expressions and a small declaration scanner rather than
// a CSS parser. Font-face rules and imports are the only constructs we
// care about, they survive minification, and a full grammar would not make
// the extraction more correct, only stricter about broken stylesheets we
// still want to read.
//
// Failures inside the import chain are swallowed per branch: an
// unreachable stylesheet contributes no records, and traversal continues
// elsewhere. Only the initial page fetch can fail discovery as a whole.
package extractor
