package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fontrake/fontrake/internal/config"
	"github.com/fontrake/fontrake/internal/family"
	"github.com/fontrake/fontrake/internal/history"
	"github.com/fontrake/fontrake/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past discovery runs",
		Long: `History lists discovery runs recorded by 'fontrake inspect', newest
first. A single run can be reloaded with --id to review its fonts without
touching the network.

Examples:
  # All recorded runs
  fontrake history

  # Runs for one site
  fontrake history --site https://example.com

  # Review the fonts of run 12
  fontrake history --id 12`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("site", "s", "", "Only show runs for this site")
	cmd.Flags().IntP("limit", "l", 20, "Maximum number of runs to list")
	cmd.Flags().Int64("id", 0, "Show the fonts recorded for one run")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	site, err := cmd.Flags().GetString("site")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	setupLogger(getVerboseFlag(cmd))

	db, err := history.Open(config.XDGDataDir(), history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if runID != 0 {
		return showRun(cmd, db, runID, asJSON)
	}
	return listRuns(cmd, db, site, limit)
}

// showRun renders one recorded run's fonts.
func showRun(cmd *cobra.Command, db *history.DB, runID int64, asJSON bool) error {
	run, err := db.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run with id %d", runID)
	}

	groups := family.GroupAll(run.Records)
	result := report.NewResult(run.Site, len(run.Records), report.ViewFont, groups)

	var writer report.Writer
	if asJSON {
		writer = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	} else {
		writer = report.NewTableWriter(cmd.OutOrStdout())
	}

	_, err = writer.Write(result)
	return err
}

// listRuns renders the run summaries as a table.
func listRuns(cmd *cobra.Command, db *history.DB, site string, limit int) error {
	runs, err := db.ListRuns(cmd.Context(), site, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs")
		return nil
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("ID", "Site", "When", "Fonts", "Families")

	for _, run := range runs {
		err := table.Append([]string{
			strconv.FormatInt(run.ID, 10),
			run.Site,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.Itoa(run.FontCount),
			strconv.Itoa(run.FamilyCount),
		})
		if err != nil {
			return err
		}
	}

	return table.Render()
}
