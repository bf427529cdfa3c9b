package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Tool         ToolConfig         `mapstructure:"tool"`
	Defaults     DefaultsConfig     `mapstructure:"defaults"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ToolConfig names the external binaries the orchestrator drives or probes
type ToolConfig struct {
	YTDLPBinary       string        `mapstructure:"ytdlp_binary"`
	FFmpegBinary      string        `mapstructure:"ffmpeg_binary"`
	AcceleratorBinary string        `mapstructure:"accelerator_binary"`
	ProbeTimeout      time.Duration `mapstructure:"probe_timeout"`
	InfoTimeout       time.Duration `mapstructure:"info_timeout"`
}

// DefaultsConfig holds the values used when a request leaves a field unset
type DefaultsConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Mode      string `mapstructure:"mode"`
	Quality   string `mapstructure:"quality"`
	Turbo     bool   `mapstructure:"turbo"`
	LogsDir   string `mapstructure:"logs_dir"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Tool: ToolConfig{
			YTDLPBinary:       "yt-dlp",
			FFmpegBinary:      "ffmpeg",
			AcceleratorBinary: "aria2c",
			ProbeTimeout:      10 * time.Second,
			InfoTimeout:       60 * time.Second,
		},
		Defaults: DefaultsConfig{
			OutputDir: "$HOME/Downloads",
			Mode:      string(MediaVideo),
			Quality:   string(QualityBest),
			Turbo:     true,
			LogsDir:   "$HOME/.vidgrab/logs",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Sound:   false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
