package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/vidgrab/internal/infrastructure"
)

var infoCmd = &cobra.Command{
	Use:   "info [url]",
	Short: "Show a video's metadata without downloading it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		log := newLogger()
		defer log.Sync()

		fetcher := infrastructure.NewInfoFetcher(config.Tool.YTDLPBinary, config.Tool.InfoTimeout, log)
		info, err := fetcher.FetchVideoInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		printVideoInfo(os.Stdout, info)
		return nil
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check which external tools are installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		log := newLogger()
		defer log.Sync()

		prober := infrastructure.NewDependencyProber(
			config.Tool.YTDLPBinary,
			config.Tool.FFmpegBinary,
			config.Tool.AcceleratorBinary,
			config.Tool.ProbeTimeout,
			log,
		)
		report := prober.Probe(cmd.Context())
		printDependencyReport(os.Stdout, report)

		if !report.Downloader.Available {
			return &exitError{code: 1}
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolP("json", "j", false, "Output in JSON format")
}

func printVideoInfo(w io.Writer, info *infrastructure.VideoInfo) {
	fmt.Fprintf(w, "Title:      %s\n", info.Title)
	fmt.Fprintf(w, "Uploader:   %s\n", info.Uploader)
	fmt.Fprintf(w, "Duration:   %s\n", info.DurationString())
	fmt.Fprintf(w, "Resolution: %s\n", info.Resolution)
	fmt.Fprintf(w, "Site:       %s\n", info.Extractor)
	if info.WebpageURL != "" {
		fmt.Fprintf(w, "URL:        %s\n", info.WebpageURL)
	}
}

func printDependencyReport(w io.Writer, report infrastructure.DependencyReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tSTATUS\tVERSION")
	for _, tool := range report.Tools() {
		status := "missing"
		detail := tool.Error
		if tool.Available {
			status = "ok"
			detail = tool.Version
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tool.Name, status, detail)
	}
	tw.Flush()
}
