package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidgrab/internal/domain"
	"github.com/yourusername/vidgrab/internal/infrastructure"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		kind domain.OutcomeKind
		want int
	}{
		{domain.OutcomeSucceeded, 0},
		{domain.OutcomeCancelled, exitCancelled},
		{domain.OutcomeFailed, 1},
		{domain.OutcomeLaunchFailed, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(domain.RunOutcome{Kind: tt.kind}))
		})
	}
}

func TestResolveServerURL(t *testing.T) {
	config := domain.DefaultConfig()
	assert.Equal(t, "http://localhost:8090", resolveServerURL(config))

	serverURL = "http://example.com:9000"
	defer func() { serverURL = "" }()
	assert.Equal(t, "http://example.com:9000", resolveServerURL(config))
}

func TestDownloadRequest_TurboOnlyWhenGiven(t *testing.T) {
	req, err := downloadRequest(downloadCmd, "https://example.com/v")
	require.NoError(t, err)
	assert.Nil(t, req.Turbo)

	require.NoError(t, downloadCmd.ParseFlags([]string{"--turbo=false", "-m", "audio", "-o", "/tmp/out"}))
	req, err = downloadRequest(downloadCmd, "https://example.com/v")
	require.NoError(t, err)
	require.NotNil(t, req.Turbo)
	assert.False(t, *req.Turbo)
	assert.Equal(t, "audio", req.Mode)
	assert.Equal(t, "/tmp/out", req.TargetDir)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 8))
	assert.Equal(t, "abcde...", truncate("abcdefghijkl", 8))
	assert.Equal(t, "ééééé...", truncate("éééééééééé", 8))
}

func TestPrintDependencyReport(t *testing.T) {
	var out bytes.Buffer
	printDependencyReport(&out, infrastructure.DependencyReport{
		Downloader:  infrastructure.ToolStatus{Name: "yt-dlp", Available: true, Version: "2024.08.06"},
		FFmpeg:      infrastructure.ToolStatus{Name: "ffmpeg", Error: "not found"},
		Accelerator: infrastructure.ToolStatus{Name: "aria2c", Error: "not found"},
	})

	text := out.String()
	assert.Contains(t, text, "TOOL")
	assert.Regexp(t, `yt-dlp\s+ok\s+2024\.08\.06`, text)
	assert.Regexp(t, `aria2c\s+missing\s+not found`, text)
}

func TestPrintRunTable(t *testing.T) {
	var out bytes.Buffer
	printRunTable(&out, []domain.RunRecord{{
		ID:        "0123456789abcdef",
		URL:       "https://example.com/v",
		Mode:      domain.MediaVideo,
		State:     domain.SessionFinished,
		Outcome:   domain.OutcomeSucceeded,
		Percent:   100,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}})

	text := out.String()
	assert.Contains(t, text, "01234...")
	assert.Contains(t, text, "succeeded")
	assert.Contains(t, text, "100.0%")
	assert.Contains(t, text, "2024-05-01 12:00:00")
}
