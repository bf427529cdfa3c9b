package infrastructure

import (
	"path/filepath"

	"github.com/yourusername/vidgrab/internal/domain"
)

// OutputTemplate is yt-dlp's own title/extension placeholder, joined onto the
// target directory and passed through untouched.
const OutputTemplate = "%(title)s.%(ext)s"

const (
	// AcceleratorName is the downloader yt-dlp delegates to in turbo mode
	AcceleratorName = "aria2c"

	turboConnections = "16"
)

// Advisory messages emitted while building the command
const (
	AdviceAccelerated = "using aria2c external downloader with 16 connections"
	AdviceBuiltin     = "aria2c not available, using built-in parallel fragment download"
	AdviceStandard    = "using standard download mode"
)

var turboArgs = []string{
	"--concurrent-fragments", turboConnections,
	"--no-check-certificate",
	"--buffer-size", "16K",
	"--retries", "10",
	"--fragment-retries", "10",
	"--no-part",
}

var acceleratorArgs = []string{
	"--downloader", AcceleratorName,
	"--downloader-args", AcceleratorName + ":-x 16 -s 16 -k 1M -j 16 --enable-color=false",
}

var builtinParallelArgs = []string{
	"--external-downloader-args", "-j " + turboConnections,
}

// BuildArgs returns the yt-dlp argument list for cfg. The result only depends
// on cfg. advise, when non-nil, is called exactly once with the chosen
// download path.
func BuildArgs(cfg domain.DownloadConfig, advise func(string)) []string {
	args := []string{
		"--progress",
		"--newline",
		"-o", filepath.Join(cfg.TargetDir, OutputTemplate),
	}

	advice := AdviceStandard
	if cfg.Turbo {
		args = append(args, turboArgs...)
		if cfg.AcceleratorAvailable {
			args = append(args, acceleratorArgs...)
			advice = AdviceAccelerated
		} else {
			args = append(args, builtinParallelArgs...)
			advice = AdviceBuiltin
		}
	}
	if advise != nil {
		advise(advice)
	}

	if cfg.Mode == domain.MediaAudio {
		args = append(args,
			"-f", "bestaudio/best",
			"-x",
			"--audio-format", "mp3",
		)
	} else {
		args = append(args,
			"-f", cfg.Quality.FormatSelector(),
			"--no-playlist",
			"--merge-output-format", "mp4",
		)
	}

	return append(args, cfg.URL)
}
