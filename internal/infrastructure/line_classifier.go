package infrastructure

import (
	"strings"
	"time"

	"github.com/yourusername/vidgrab/internal/domain"
)

// Marker tags a line with Kind when Match returns true
type Marker struct {
	Kind  domain.EventKind
	Match func(line string) bool
}

// ContainsAny builds a predicate matching lines that contain any token
func ContainsAny(tokens ...string) func(string) bool {
	return func(line string) bool {
		for _, token := range tokens {
			if strings.Contains(line, token) {
				return true
			}
		}
		return false
	}
}

// DefaultMarkers returns the error and warning markers of yt-dlp, including
// the localized variants. Error is listed first so it wins over warning.
func DefaultMarkers() []Marker {
	return []Marker{
		{Kind: domain.EventError, Match: ContainsAny("ERROR:", "错误:")},
		{Kind: domain.EventWarning, Match: ContainsAny("WARNING:", "警告:")},
	}
}

// DefaultNoisyPrefixes are prefixes of chatty lines that are not forwarded as
// plain lines. They can still be classified as progress, error or warning.
var DefaultNoisyPrefixes = []string{"[download]"}

// LineClassifier turns a raw output line into a RunEvent
type LineClassifier struct {
	markers       []Marker
	noisyPrefixes []string
	parse         func(string) domain.ProgressSignal
}

// NewLineClassifier creates a classifier checking markers in order
func NewLineClassifier(markers []Marker, noisyPrefixes []string) *LineClassifier {
	return &LineClassifier{
		markers:       markers,
		noisyPrefixes: noisyPrefixes,
		parse:         ParseProgress,
	}
}

// NewDefaultLineClassifier creates a classifier for yt-dlp output
func NewDefaultLineClassifier() *LineClassifier {
	return NewLineClassifier(DefaultMarkers(), DefaultNoisyPrefixes)
}

// Classify returns the event for line. The second result is false when the
// line is suppressed: blank lines and noisy lines without a progress token.
func (c *LineClassifier) Classify(line string) (domain.RunEvent, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.RunEvent{}, false
	}

	event := domain.RunEvent{Line: line, Time: time.Now()}

	for _, marker := range c.markers {
		if marker.Match(line) {
			event.Kind = marker.Kind
			return event, true
		}
	}

	if signal := c.parse(line); !signal.IsEmpty() {
		event.Kind = domain.EventProgress
		event.Progress = &signal
		return event, true
	}

	if c.isNoisy(line) {
		return domain.RunEvent{}, false
	}

	event.Kind = domain.EventLine
	return event, true
}

func (c *LineClassifier) isNoisy(line string) bool {
	for _, prefix := range c.noisyPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
