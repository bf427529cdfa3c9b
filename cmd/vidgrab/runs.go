package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/vidgrab/internal/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and control downloads running on the server",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect()
		if err != nil {
			return err
		}

		filters := url.Values{}
		for _, key := range []string{"state", "outcome", "mode"} {
			if value, _ := cmd.Flags().GetString(key); value != "" {
				filters.Set(key, value)
			}
		}

		records, err := client.listRuns(filters)
		if err != nil {
			return err
		}
		printRunTable(os.Stdout, records)
		return nil
	},
}

var runsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show run details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect()
		if err != nil {
			return err
		}

		record, err := client.getRun(args[0])
		if err != nil {
			return err
		}
		printRunDetails(os.Stdout, record)
		return nil
	},
}

var runsCancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a running download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect()
		if err != nil {
			return err
		}

		if _, err := client.cancelRun(args[0]); err != nil {
			return err
		}
		fmt.Println("Cancel requested")
		return nil
	},
}

var runsWatchCmd = &cobra.Command{
	Use:   "watch [id]",
	Short: "Follow a run's output until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect()
		if err != nil {
			return err
		}

		outcome, err := client.streamEvents(cmd.Context(), args[0], NewTerminalSink(os.Stdout, false))
		if err != nil {
			return err
		}
		if code := exitCodeFor(outcome); code != 0 {
			return &exitError{code: code}
		}
		return nil
	},
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect()
		if err != nil {
			return err
		}

		stats, err := client.stats()
		if err != nil {
			return err
		}

		fmt.Println("Run Statistics:")
		fmt.Printf("  Total:         %d\n", stats.Total)
		fmt.Printf("  Running:       %d\n", stats.Running)
		fmt.Printf("  Succeeded:     %d\n", stats.Succeeded)
		fmt.Printf("  Failed:        %d\n", stats.Failed)
		fmt.Printf("  Cancelled:     %d\n", stats.Cancelled)
		fmt.Printf("  Launch failed: %d\n", stats.LaunchFailed)
		return nil
	},
}

func init() {
	runsListCmd.Flags().StringP("state", "s", "", "Filter by state")
	runsListCmd.Flags().StringP("outcome", "o", "", "Filter by outcome")
	runsListCmd.Flags().StringP("mode", "m", "", "Filter by media mode")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsGetCmd)
	runsCmd.AddCommand(runsCancelCmd)
	runsCmd.AddCommand(runsWatchCmd)
	runsCmd.AddCommand(runsStatsCmd)
}

func printRunTable(w io.Writer, records []domain.RunRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURL\tMODE\tSTATE\tOUTCOME\tPROGRESS\tCREATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f%%\t%s\n",
			truncate(r.ID, 8),
			truncate(r.URL, 40),
			r.Mode,
			r.State,
			r.Outcome,
			r.Percent,
			r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

func printRunDetails(w io.Writer, r *domain.RunRecord) {
	fmt.Fprintf(w, "Run Details:\n")
	fmt.Fprintf(w, "  ID:        %s\n", r.ID)
	fmt.Fprintf(w, "  URL:       %s\n", r.URL)
	fmt.Fprintf(w, "  Target:    %s\n", r.TargetDir)
	fmt.Fprintf(w, "  Mode:      %s (%s)\n", r.Mode, r.Quality)
	fmt.Fprintf(w, "  Turbo:     %t (accelerated: %t)\n", r.Turbo, r.Accelerated)
	fmt.Fprintf(w, "  State:     %s\n", r.State)
	fmt.Fprintf(w, "  Progress:  %.1f%%\n", r.Percent)
	fmt.Fprintf(w, "  Created:   %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	if r.IsTerminal() {
		fmt.Fprintf(w, "  Outcome:   %s (exit code %d)\n", r.Outcome, r.ExitCode)
		fmt.Fprintf(w, "  Summary:   %s\n", r.Summary)
	}
	if r.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error:     %s\n", r.ErrorMessage)
	}
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
