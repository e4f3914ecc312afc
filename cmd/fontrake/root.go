// Package main provides the entry point for the fontrake CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for fontrake.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fontrake",
		Short: "Discover and download web fonts from any page",
		Long: `fontrake scans a page's HTML and CSS for web font sources, groups the
findings into inferred font families, and downloads selected files.

Discovery follows linked and imported stylesheets, understands inline data
payloads, and collapses inconsistent declared names (OpenSansBold-webfont,
open-sans_700) into canonical family groups.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
