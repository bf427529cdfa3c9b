package infrastructure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidgrab/internal/domain"
)

func TestLineClassifier_Classify(t *testing.T) {
	classifier := NewDefaultLineClassifier()

	tests := []struct {
		name     string
		line     string
		kind     domain.EventKind
		forwards bool
	}{
		{"error marker", "ERROR: [youtube] abc: Video unavailable", domain.EventError, true},
		{"localized error", "错误: 无法下载", domain.EventError, true},
		{"warning marker", "WARNING: [youtube] Falling back to generic n function", domain.EventWarning, true},
		{"localized warning", "警告: 重试中", domain.EventWarning, true},
		{"progress", "[download]  10.0% of 5.00MiB at 1.00MiB/s ETA 00:04", domain.EventProgress, true},
		{"plain line", "[youtube] abc: Downloading webpage", domain.EventLine, true},
		{"noisy line suppressed", "[download] Destination: /tmp/video.mp4", "", false},
		{"blank line suppressed", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := classifier.Classify(tt.line)

			assert.Equal(t, tt.forwards, ok)
			if tt.forwards {
				assert.Equal(t, tt.kind, event.Kind)
				assert.Equal(t, strings.TrimSpace(tt.line), event.Line)
			}
		})
	}
}

func TestLineClassifier_ErrorTakesPrecedenceOverProgress(t *testing.T) {
	classifier := NewDefaultLineClassifier()

	event, ok := classifier.Classify("ERROR: fragment 3 failed at 45.0% of 10.00MiB")

	require.True(t, ok)
	assert.Equal(t, domain.EventError, event.Kind)
	assert.Nil(t, event.Progress)
}

func TestLineClassifier_ErrorTakesPrecedenceOverWarning(t *testing.T) {
	classifier := NewDefaultLineClassifier()

	event, ok := classifier.Classify("WARNING: retrying ... ERROR: giving up")

	require.True(t, ok)
	assert.Equal(t, domain.EventError, event.Kind)
}

func TestLineClassifier_ProgressCarriesSignal(t *testing.T) {
	classifier := NewDefaultLineClassifier()

	event, ok := classifier.Classify("[download]  55.5% of 20.00MiB")

	require.True(t, ok)
	require.NotNil(t, event.Progress)
	require.NotNil(t, event.Progress.Percent)
	assert.Equal(t, 55.5, *event.Progress.Percent)
	assert.Equal(t, "20.00MiB", event.Progress.Size)
}

func TestLineClassifier_CustomMarkers(t *testing.T) {
	classifier := NewLineClassifier([]Marker{
		{Kind: domain.EventWarning, Match: ContainsAny("slow")},
		{Kind: domain.EventError, Match: func(line string) bool { return strings.HasPrefix(line, "fatal") }},
	}, nil)

	event, ok := classifier.Classify("fatal: slow disk")
	require.True(t, ok)
	// first marker in the list wins
	assert.Equal(t, domain.EventWarning, event.Kind)

	event, ok = classifier.Classify("fatal: disk full")
	require.True(t, ok)
	assert.Equal(t, domain.EventError, event.Kind)

	// with no noisy prefixes configured, [download] lines pass through
	event, ok = classifier.Classify("[download] Destination: a.mp4")
	require.True(t, ok)
	assert.Equal(t, domain.EventLine, event.Kind)
}

func TestContainsAny(t *testing.T) {
	match := ContainsAny("foo", "bar")

	assert.True(t, match("xxfooxx"))
	assert.True(t, match("bar"))
	assert.False(t, match("baz"))
	assert.False(t, ContainsAny()("anything"))
}
