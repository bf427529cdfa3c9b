package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/vidgrab/internal/domain"
)

func percent(v float64) *float64 {
	return &v
}

func TestTerminalSink_PrintsLinesAndSummary(t *testing.T) {
	var out bytes.Buffer
	sink := NewTerminalSink(&out, false)

	sink.OnNotice("using standard download mode")
	sink.OnEvent(domain.RunEvent{Seq: 1, Kind: domain.EventLine, Line: "[youtube] abc: Downloading webpage"})
	sink.OnEvent(domain.RunEvent{Seq: 2, Kind: domain.EventProgress, Line: "[download]  50.0%",
		Progress: &domain.ProgressSignal{Percent: percent(50), Speed: "1.0MiB/s"}})
	sink.OnEvent(domain.RunEvent{Seq: 3, Kind: domain.EventWarning, Line: "WARNING: slow mirror"})
	sink.OnEvent(domain.RunEvent{Seq: 4, Kind: domain.EventProgress, Line: "[download] 100%",
		Progress: &domain.ProgressSignal{Percent: percent(100)}})
	sink.OnOutcome(domain.RunOutcome{Kind: domain.OutcomeSucceeded, Warnings: 1})

	text := out.String()
	assert.Contains(t, text, "» using standard download mode")
	assert.Contains(t, text, "[youtube] abc: Downloading webpage")
	assert.Contains(t, text, "WARNING: slow mirror")
	assert.Contains(t, text, "download completed with 1 warning(s)")
	assert.Nil(t, sink.bar)
}

func TestTerminalSink_Quiet(t *testing.T) {
	var out bytes.Buffer
	sink := NewTerminalSink(&out, true)

	sink.OnNotice("command: yt-dlp ...")
	sink.OnEvent(domain.RunEvent{Seq: 1, Kind: domain.EventLine, Line: "[info] chatty"})
	sink.OnEvent(domain.RunEvent{Seq: 2, Kind: domain.EventProgress, Progress: &domain.ProgressSignal{Percent: percent(10)}})
	sink.OnEvent(domain.RunEvent{Seq: 3, Kind: domain.EventError, Line: "ERROR: Unsupported URL"})
	sink.OnOutcome(domain.RunOutcome{Kind: domain.OutcomeFailed, ExitCode: 1, Errors: []string{"ERROR: Unsupported URL"}})

	text := out.String()
	assert.NotContains(t, text, "command:")
	assert.NotContains(t, text, "chatty")
	assert.Contains(t, text, "ERROR: Unsupported URL")
	assert.Contains(t, text, "download failed (exit code 1)")
}

func TestTerminalSink_FailureAfterProgress(t *testing.T) {
	var out bytes.Buffer
	sink := NewTerminalSink(&out, false)

	sink.OnEvent(domain.RunEvent{Seq: 1, Kind: domain.EventProgress, Progress: &domain.ProgressSignal{Percent: percent(30)}})
	sink.OnOutcome(domain.RunOutcome{Kind: domain.OutcomeCancelled, ExitCode: -1})

	assert.Contains(t, out.String(), "download cancelled")
	assert.Nil(t, sink.bar)
}
