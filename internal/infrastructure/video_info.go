package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// VideoInfo is the subset of yt-dlp's metadata shown before a download
type VideoInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	Uploader   string  `json:"uploader"`
	Resolution string  `json:"resolution"`
	Extractor  string  `json:"extractor"`
	WebpageURL string  `json:"webpage_url"`
	Thumbnail  string  `json:"thumbnail,omitempty"`
}

// DurationString formats the duration as H:MM:SS or M:SS
func (v VideoInfo) DurationString() string {
	if v.Duration <= 0 {
		return "unknown"
	}
	d := time.Duration(v.Duration) * time.Second
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// InfoFetcher runs yt-dlp in metadata mode
type InfoFetcher struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewInfoFetcher creates a fetcher using binary
func NewInfoFetcher(binary string, timeout time.Duration, logger *zap.Logger) *InfoFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &InfoFetcher{binary: binary, timeout: timeout, logger: logger}
}

// FetchVideoInfo returns the metadata of url without downloading it
func (f *InfoFetcher) FetchVideoInfo(ctx context.Context, url string) (*VideoInfo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{"--dump-json", "--no-playlist", url}
	f.logger.Debug("Fetching video info", zap.String("command", FormatCommandLine(f.binary, args)))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetching video info timed out: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("failed to fetch video info: %w", err)
		}
		return nil, fmt.Errorf("failed to fetch video info: %s: %w", msg, err)
	}

	return ParseVideoInfo(stdout.Bytes())
}

// ParseVideoInfo decodes the first JSON object of a --dump-json output
func ParseVideoInfo(data []byte) (*VideoInfo, error) {
	var info VideoInfo
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to parse video info: %w", err)
	}
	if info.Title == "" {
		info.Title = "Unknown"
	}
	if info.Uploader == "" {
		info.Uploader = "Unknown"
	}
	if info.Resolution == "" {
		info.Resolution = "Unknown"
	}
	return &info, nil
}
