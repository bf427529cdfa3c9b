package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yourusername/vidgrab/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. VIDGRAB_SERVER_PORT
const EnvPrefix = "VIDGRAB"

// LoadConfig loads configuration from file and environment. A .env file in
// the working directory is loaded first; variables already set win.
func LoadConfig(configPath string) (*domain.Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.vidgrab")
		v.AddConfigPath("/etc/vidgrab")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// env overrides are only seen for keys viper knows about
	setDefaults(v, config)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)

	v.SetDefault("tool.ytdlp_binary", config.Tool.YTDLPBinary)
	v.SetDefault("tool.ffmpeg_binary", config.Tool.FFmpegBinary)
	v.SetDefault("tool.accelerator_binary", config.Tool.AcceleratorBinary)
	v.SetDefault("tool.probe_timeout", config.Tool.ProbeTimeout)
	v.SetDefault("tool.info_timeout", config.Tool.InfoTimeout)

	v.SetDefault("defaults.output_dir", config.Defaults.OutputDir)
	v.SetDefault("defaults.mode", config.Defaults.Mode)
	v.SetDefault("defaults.quality", config.Defaults.Quality)
	v.SetDefault("defaults.turbo", config.Defaults.Turbo)
	v.SetDefault("defaults.logs_dir", config.Defaults.LogsDir)

	v.SetDefault("notification.enabled", config.Notification.Enabled)
	v.SetDefault("notification.sound", config.Notification.Sound)
	v.SetDefault("notification.method", config.Notification.Method)

	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Defaults.OutputDir = expandPath(config.Defaults.OutputDir)
	config.Defaults.LogsDir = expandPath(config.Defaults.LogsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and a leading ~ in paths
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	// $HOME may be unset in service environments
	if strings.Contains(path, "$HOME") && os.Getenv("HOME") == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Tool.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Tool.ProbeTimeout <= 0 || config.Tool.InfoTimeout <= 0 {
		return fmt.Errorf("tool timeouts must be positive")
	}

	if config.Defaults.OutputDir == "" {
		return fmt.Errorf("default output directory not configured")
	}

	if !domain.ValidateMode(domain.MediaMode(config.Defaults.Mode)) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMode, config.Defaults.Mode)
	}

	if !domain.ValidateQuality(domain.Quality(config.Defaults.Quality)) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidQuality, config.Defaults.Quality)
	}

	switch config.Notification.Method {
	case "osascript", "notify-send":
	default:
		return fmt.Errorf("unknown notification method: %q", config.Notification.Method)
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
