package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/vidgrab/internal/app"
	"github.com/yourusername/vidgrab/internal/domain"
	"github.com/yourusername/vidgrab/internal/infrastructure"
)

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Download a video or its audio track",
	Long: `Download a video or its audio track with yt-dlp and show live progress.
Ctrl+C cancels the download.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		req, err := downloadRequest(cmd, args[0])
		if err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		sink := NewTerminalSink(os.Stdout, quiet)

		var outcome domain.RunOutcome
		if remote, _ := cmd.Flags().GetBool("remote"); remote {
			outcome, err = runRemoteDownload(cmd.Context(), req, sink)
		} else {
			outcome, err = runLocalDownload(cmd.Context(), config, req, sink)
		}
		if err != nil {
			return err
		}

		if code := exitCodeFor(outcome); code != 0 {
			return &exitError{code: code}
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringP("output", "o", "", "Target directory (default from config)")
	downloadCmd.Flags().StringP("mode", "m", "", "Media mode: video or audio")
	downloadCmd.Flags().StringP("quality", "q", "", "Quality: best, 1080p, 720p, 480p or 360p")
	downloadCmd.Flags().Bool("turbo", true, "Enable concurrent fragment downloading")
	downloadCmd.Flags().Bool("remote", false, "Run the download on the server and follow it")
	downloadCmd.Flags().Bool("quiet", false, "Only print errors and the result")
}

// downloadRequest turns flags into a request. Turbo is only set when the
// flag was given so the configured default applies otherwise.
func downloadRequest(cmd *cobra.Command, url string) (app.RunRequest, error) {
	req := app.RunRequest{URL: url}
	req.TargetDir, _ = cmd.Flags().GetString("output")
	req.Mode, _ = cmd.Flags().GetString("mode")
	req.Quality, _ = cmd.Flags().GetString("quality")

	if cmd.Flags().Changed("turbo") {
		turbo, err := cmd.Flags().GetBool("turbo")
		if err != nil {
			return req, err
		}
		req.Turbo = &turbo
	}
	return req, nil
}

// runLocalDownload runs one session in this process
func runLocalDownload(ctx context.Context, config *domain.Config, req app.RunRequest, terminal *TerminalSink) (domain.RunOutcome, error) {
	log := newLogger()
	defer log.Sync()

	prober := infrastructure.NewDependencyProber(
		config.Tool.YTDLPBinary,
		config.Tool.FFmpegBinary,
		config.Tool.AcceleratorBinary,
		config.Tool.ProbeTimeout,
		log,
	)
	cfg := app.ResolveDownloadConfig(ctx, config.Defaults, req, prober)

	var sink domain.EventSink = terminal
	if verbose {
		// the terminal already shows warnings and errors
		sink = app.NewMultiSink(terminal, app.NewLogSink(log))
	}

	session := app.NewSession(cfg, sink, app.SessionOptions{
		Binary: config.Tool.YTDLPBinary,
		Logger: log,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return domain.RunOutcome{}, err
	}

	log.Debug("Session started", zap.String("session_id", session.ID()))
	return session.Wait(context.Background())
}

// runRemoteDownload submits the download to the server and follows its
// event stream. Ctrl+C asks the server to cancel the run.
func runRemoteDownload(ctx context.Context, req app.RunRequest, sink domain.EventSink) (domain.RunOutcome, error) {
	client, err := connect()
	if err != nil {
		return domain.RunOutcome{}, err
	}

	record, err := client.startRun(req)
	if err != nil {
		return domain.RunOutcome{}, err
	}
	fmt.Fprintf(os.Stderr, "Run %s started on the server\n", record.ID)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-signals:
				if _, err := client.cancelRun(record.ID); err != nil {
					fmt.Fprintf(os.Stderr, "Cancel failed: %v\n", err)
				}
			case <-done:
				return
			}
		}
	}()

	return client.streamEvents(ctx, record.ID, sink)
}
