package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() DownloadConfig {
	return DownloadConfig{
		URL:       "https://www.youtube.com/watch?v=abc",
		TargetDir: "/tmp/videos",
		Mode:      MediaVideo,
		Quality:   QualityBest,
	}
}

func TestDownloadConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *DownloadConfig)
		wantErr error
	}{
		{"valid video", func(c *DownloadConfig) {}, nil},
		{"valid audio", func(c *DownloadConfig) { c.Mode = MediaAudio }, nil},
		{"empty url", func(c *DownloadConfig) { c.URL = "" }, ErrEmptyURL},
		{"blank url", func(c *DownloadConfig) { c.URL = "   " }, ErrEmptyURL},
		{"empty target dir", func(c *DownloadConfig) { c.TargetDir = "" }, ErrEmptyTargetDir},
		{"unknown mode", func(c *DownloadConfig) { c.Mode = "gif" }, ErrInvalidMode},
		{"unknown quality", func(c *DownloadConfig) { c.Quality = "4320p" }, ErrInvalidQuality},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDownloadConfig_Normalize(t *testing.T) {
	cfg := DownloadConfig{URL: "  https://example.com/v  ", TargetDir: " /tmp/out "}

	normalized := cfg.Normalize()

	assert.Equal(t, "https://example.com/v", normalized.URL)
	assert.Equal(t, "/tmp/out", normalized.TargetDir)
	assert.Equal(t, MediaVideo, normalized.Mode)
	assert.Equal(t, QualityBest, normalized.Quality)
	// the receiver is a value, the original stays untouched
	assert.Equal(t, "  https://example.com/v  ", cfg.URL)
}

func TestValidateMode(t *testing.T) {
	assert.True(t, ValidateMode(MediaVideo))
	assert.True(t, ValidateMode(MediaAudio))
	assert.False(t, ValidateMode("invalid"))
}

func TestValidateQuality(t *testing.T) {
	for _, q := range Qualities {
		assert.True(t, ValidateQuality(q), string(q))
	}
	assert.False(t, ValidateQuality(""))
	assert.False(t, ValidateQuality("bestvideo"))
}

func TestQuality_FormatSelector(t *testing.T) {
	tests := []struct {
		quality Quality
		want    string
	}{
		{QualityBest, "best"},
		{Quality1080p, "bestvideo[height<=1080]+bestaudio/best[height<=1080]"},
		{Quality360p, "bestvideo[height<=360]+bestaudio/best[height<=360]"},
	}

	for _, tt := range tests {
		t.Run(string(tt.quality), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.quality.FormatSelector())
		})
	}
}
