// Package config holds runtime configuration for font discovery and
// download runs.
//
// Configuration flows from three places, in increasing precedence: built-in
// defaults, the optional .fontrake YAML file (current directory first, then
// the user's home directory), and CLI flags. The resulting Config is passed
// through the application by dependency injection; there is no global
// state.
//
// The YAML file carries per-site overrides, keyed by host. A site entry can
// replace the User-Agent or add request headers for CDNs that gate font
// files behind them.
package config
