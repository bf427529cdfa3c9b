package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourusername/vidgrab/internal/domain"
)

func TestMultiSink_ForwardsInOrder(t *testing.T) {
	var calls []string
	record := func(name string) SinkFuncs {
		return SinkFuncs{
			Notice:  func(string) { calls = append(calls, name+":notice") },
			Event:   func(domain.RunEvent) { calls = append(calls, name+":event") },
			Outcome: func(domain.RunOutcome) { calls = append(calls, name+":outcome") },
		}
	}

	sink := NewMultiSink(record("a"), nil, record("b"))
	sink.OnNotice("n")
	sink.OnEvent(domain.RunEvent{})
	sink.OnOutcome(domain.RunOutcome{})

	assert.Len(t, sink, 2)
	assert.Equal(t, []string{
		"a:notice", "b:notice",
		"a:event", "b:event",
		"a:outcome", "b:outcome",
	}, calls)
}

func TestSinkFuncs_NilFieldsAreSkipped(t *testing.T) {
	var sink domain.EventSink = SinkFuncs{}

	assert.NotPanics(t, func() {
		sink.OnNotice("n")
		sink.OnEvent(domain.RunEvent{})
		sink.OnOutcome(domain.RunOutcome{})
	})
}

func TestLogSink_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(zap.New(core))
	percent := 12.5

	sink.OnNotice("using standard download mode")
	sink.OnEvent(domain.RunEvent{Seq: 1, Kind: domain.EventProgress, Line: "12.5%", Progress: &domain.ProgressSignal{Percent: &percent}})
	sink.OnEvent(domain.RunEvent{Seq: 2, Kind: domain.EventWarning, Line: "WARNING: x"})
	sink.OnEvent(domain.RunEvent{Seq: 3, Kind: domain.EventError, Line: "ERROR: y"})
	sink.OnEvent(domain.RunEvent{Seq: 4, Kind: domain.EventLine, Line: "plain"})
	sink.OnOutcome(domain.RunOutcome{Kind: domain.OutcomeFailed, ExitCode: 1, Errors: []string{"ERROR: y"}})

	entries := logs.All()
	require.Len(t, entries, 6)
	levels := []zapcore.Level{
		zapcore.InfoLevel,
		zapcore.DebugLevel,
		zapcore.WarnLevel,
		zapcore.ErrorLevel,
		zapcore.DebugLevel,
		zapcore.ErrorLevel,
	}
	for i, entry := range entries {
		assert.Equal(t, levels[i], entry.Level, "entry %d: %s", i, entry.Message)
	}
	assert.Equal(t, 12.5, entries[1].ContextMap()["percent"])
	assert.Equal(t, "failed", entries[5].ContextMap()["outcome"])
}
