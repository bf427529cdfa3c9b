package domain

import (
	"fmt"
	"strings"
)

// MediaMode selects between a merged video download and audio extraction
type MediaMode string

const (
	MediaVideo MediaMode = "video"
	MediaAudio MediaMode = "audio"
)

// Quality is the format selector handed to the tool in video mode
type Quality string

const (
	QualityBest  Quality = "best"
	Quality1080p Quality = "1080p"
	Quality720p  Quality = "720p"
	Quality480p  Quality = "480p"
	Quality360p  Quality = "360p"
)

// Qualities lists every accepted quality selector, best first
var Qualities = []Quality{QualityBest, Quality1080p, Quality720p, Quality480p, Quality360p}

// DownloadConfig describes one download request. It is treated as an
// immutable value once a session starts.
type DownloadConfig struct {
	URL       string    `json:"url"`
	TargetDir string    `json:"target_dir"`
	Mode      MediaMode `json:"mode"`
	Quality   Quality   `json:"quality"`
	Turbo     bool      `json:"turbo"`

	// AcceleratorAvailable is supplied by the dependency prober.
	AcceleratorAvailable bool `json:"accelerator_available"`
}

// Normalize trims whitespace and fills in the mode and quality defaults
func (c DownloadConfig) Normalize() DownloadConfig {
	c.URL = strings.TrimSpace(c.URL)
	c.TargetDir = strings.TrimSpace(c.TargetDir)
	if c.Mode == "" {
		c.Mode = MediaVideo
	}
	if c.Quality == "" {
		c.Quality = QualityBest
	}
	return c
}

// Validate checks the request before a session may start
func (c DownloadConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return ErrEmptyURL
	}
	if strings.TrimSpace(c.TargetDir) == "" {
		return ErrEmptyTargetDir
	}
	if !ValidateMode(c.Mode) {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if !ValidateQuality(c.Quality) {
		return fmt.Errorf("%w: %q", ErrInvalidQuality, c.Quality)
	}
	return nil
}

// ValidateMode checks if a media mode is valid
func ValidateMode(mode MediaMode) bool {
	return mode == MediaVideo || mode == MediaAudio
}

// FormatSelector returns the yt-dlp -f expression for q. Heights cap the
// video stream and fall back to the best single file under that height.
func (q Quality) FormatSelector() string {
	height := strings.TrimSuffix(string(q), "p")
	if q == QualityBest || height == string(q) {
		return string(q)
	}
	return fmt.Sprintf("bestvideo[height<=%[1]s]+bestaudio/best[height<=%[1]s]", height)
}

// ValidateQuality checks if a quality selector is one of Qualities
func ValidateQuality(q Quality) bool {
	for _, known := range Qualities {
		if q == known {
			return true
		}
	}
	return false
}
