package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Browse stored validation reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, most recent first",
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [report-id]",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

func init() {
	reportShowCmd.Flags().BoolVar(&reportJSON, "json", false, "output the report as JSON")
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportList(cmd *cobra.Command, _ []string) error {
	if reportStore == nil {
		return errors.New("report store not configured")
	}

	reports, err := reportStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}

	if len(reports) == 0 {
		cmd.Println("No reports stored.")
		return nil
	}

	for _, r := range reports {
		cmd.Printf("  %s  %-14s %-24s %s\n",
			r.GeneratedAt.Format("2006-01-02 15:04"),
			r.OverallStatus,
			orDash(r.Record.FormTypeGuess),
			r.ID)
	}
	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	if reportStore == nil {
		return errors.New("report store not configured")
	}

	report, err := reportStore.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get report: %w", err)
	}

	if reportJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if reportService != nil {
		cmd.Println(reportService.Render(*report))
		return nil
	}

	cmd.Printf("Report %s: %s (%d findings)\n", report.ID, report.OverallStatus, len(report.Findings))
	return nil
}
