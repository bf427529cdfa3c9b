package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/yourusername/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// NotificationService sends desktop notifications about runs
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		if n.config.Sound {
			script += ` sound name "Glass"`
		}
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyRunStarted sends notification when a download starts
func (n *NotificationService) NotifyRunStarted(url string) {
	n.Send("Download Started", "Downloading: "+truncateString(url, 40))
}

// NotifyRunFinished sends one notification describing the outcome
func (n *NotificationService) NotifyRunFinished(url string, outcome domain.RunOutcome) {
	var title string
	switch outcome.Kind {
	case domain.OutcomeSucceeded:
		title = "Download Completed"
	case domain.OutcomeCancelled:
		title = "Download Cancelled"
	default:
		title = "Download Failed"
	}
	summary := outcome.Summary()
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = summary[:i]
	}
	n.Send(title, fmt.Sprintf("%s: %s", truncateString(url, 40), summary))
}

// truncateString truncates a string to the specified number of runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
