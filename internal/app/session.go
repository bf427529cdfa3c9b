package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/yourusername/vidgrab/internal/domain"
	"github.com/yourusername/vidgrab/internal/infrastructure"
	"go.uber.org/zap"
)

// SessionOptions configures how a session launches the external tool
type SessionOptions struct {
	// ID overrides the generated identifier
	ID         string
	Binary     string
	Classifier *infrastructure.LineClassifier
	Logger     *zap.Logger
}

// Session drives one download from start to its single outcome.
//
// State moves Idle -> Running -> Finished, or Idle -> Running -> Cancelling
// -> Finished. Events reach the sink from one background goroutine, in
// output order, followed by exactly one outcome.
type Session struct {
	id         string
	sink       domain.EventSink
	binary     string
	classifier *infrastructure.LineClassifier
	logger     *zap.Logger

	mu              sync.Mutex
	cfg             domain.DownloadConfig
	state           domain.SessionState
	cancelRequested bool
	supervisor      *infrastructure.ProcessSupervisor
	outcome         *domain.RunOutcome
	stopAfterFunc   func() bool
	done            chan struct{}
}

// NewSession creates an idle session for cfg reporting to sink
func NewSession(cfg domain.DownloadConfig, sink domain.EventSink, opts SessionOptions) *Session {
	if sink == nil {
		sink = NopSink{}
	}
	if opts.Binary == "" {
		opts.Binary = "yt-dlp"
	}
	if opts.Classifier == nil {
		opts.Classifier = infrastructure.NewDefaultLineClassifier()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	return &Session{
		id:         id,
		sink:       sink,
		binary:     opts.Binary,
		classifier: opts.Classifier,
		logger:     opts.Logger.With(zap.String("session_id", id)),
		cfg:        cfg,
		state:      domain.SessionIdle,
		done:       make(chan struct{}),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Config returns the configuration, normalized once Start accepted it
func (s *Session) Config() domain.DownloadConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// State returns the current lifecycle state
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start validates the configuration and launches the download. It returns
// an error only when the session was not idle or the configuration is
// invalid; in both cases nothing is reported to the sink. Launch problems
// finish the session with an OutcomeLaunchFailed instead.
//
// Cancelling ctx has the same effect as calling Cancel.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.SessionIdle {
		s.mu.Unlock()
		return domain.ErrSessionNotIdle
	}
	cfg := s.cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("invalid download config: %w", err)
	}
	s.cfg = cfg
	s.state = domain.SessionRunning
	s.stopAfterFunc = context.AfterFunc(ctx, func() { s.Cancel() })
	s.mu.Unlock()

	s.logger.Info("Starting session",
		zap.String("url", cfg.URL),
		zap.String("target_dir", cfg.TargetDir),
		zap.String("mode", string(cfg.Mode)),
		zap.String("quality", string(cfg.Quality)),
		zap.Bool("turbo", cfg.Turbo),
		zap.Bool("accelerator", cfg.AcceleratorAvailable))

	if err := os.MkdirAll(cfg.TargetDir, 0755); err != nil {
		s.finishLaunch(fmt.Sprintf("failed to create target directory: %v", err))
		return nil
	}

	args := infrastructure.BuildArgs(cfg, s.sink.OnNotice)
	s.sink.OnNotice("command: " + infrastructure.FormatCommandLine(s.binary, args))

	supervisor := infrastructure.NewProcessSupervisor(s.binary, s.classifier, s.logger)
	if err := supervisor.Start(context.Background(), args); err != nil {
		s.finishLaunch(err.Error())
		return nil
	}

	s.mu.Lock()
	s.supervisor = supervisor
	cancelled := s.cancelRequested
	s.mu.Unlock()

	// Cancel arrived while the process was being launched
	if cancelled {
		supervisor.Cancel()
	}

	go s.run(supervisor)
	return nil
}

func (s *Session) run(supervisor *infrastructure.ProcessSupervisor) {
	var errorLines []string
	warnings := 0

	exitCode := supervisor.Run(func(event domain.RunEvent) {
		switch event.Kind {
		case domain.EventError:
			errorLines = append(errorLines, event.Line)
		case domain.EventWarning:
			warnings++
		}
		s.sink.OnEvent(event)
	})

	s.mu.Lock()
	cancelled := s.cancelRequested
	s.mu.Unlock()

	s.finish(DecideOutcome(cancelled, exitCode, errorLines, warnings))
}

// DecideOutcome maps the end of a run to its outcome. A requested cancel
// wins over whatever the process reported.
func DecideOutcome(cancelled bool, exitCode int, errorLines []string, warnings int) domain.RunOutcome {
	switch {
	case cancelled:
		return domain.RunOutcome{Kind: domain.OutcomeCancelled, ExitCode: exitCode, Warnings: warnings}
	case exitCode == 0 && len(errorLines) == 0:
		return domain.RunOutcome{Kind: domain.OutcomeSucceeded, ExitCode: 0, Warnings: warnings}
	default:
		return domain.RunOutcome{
			Kind:     domain.OutcomeFailed,
			ExitCode: exitCode,
			Errors:   errorLines,
			Warnings: warnings,
		}
	}
}

func (s *Session) finishLaunch(reason string) {
	s.mu.Lock()
	cancelled := s.cancelRequested
	s.mu.Unlock()

	s.finish(DecideLaunchOutcome(cancelled, reason))
}

// DecideLaunchOutcome maps a failed launch to its outcome. A cancel the
// caller already saw acknowledged wins over the launch error.
func DecideLaunchOutcome(cancelled bool, reason string) domain.RunOutcome {
	if cancelled {
		return domain.RunOutcome{Kind: domain.OutcomeCancelled, ExitCode: domain.ExitCodeUnknown, Reason: reason}
	}
	return domain.RunOutcome{Kind: domain.OutcomeLaunchFailed, ExitCode: domain.ExitCodeUnknown, Reason: reason}
}

func (s *Session) finish(outcome domain.RunOutcome) {
	s.mu.Lock()
	s.state = domain.SessionFinished
	s.outcome = &outcome
	stop := s.stopAfterFunc
	s.mu.Unlock()

	if stop != nil {
		stop()
	}

	s.logger.Info("Session finished",
		zap.String("outcome", string(outcome.Kind)),
		zap.Int("exit_code", outcome.ExitCode),
		zap.Int("errors", len(outcome.Errors)),
		zap.Int("warnings", outcome.Warnings))

	s.sink.OnOutcome(outcome)
	close(s.done)
}

// Cancel asks a running session to stop. It returns false when the session
// is not running, including when a cancel is already in progress.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	if s.state != domain.SessionRunning {
		s.mu.Unlock()
		return false
	}
	s.state = domain.SessionCancelling
	s.cancelRequested = true
	supervisor := s.supervisor
	s.mu.Unlock()

	s.logger.Info("Cancelling session")
	if supervisor != nil {
		supervisor.Cancel()
	}
	return true
}

// Done is closed after the outcome has been delivered to the sink
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Outcome returns the outcome once the session has finished
func (s *Session) Outcome() (domain.RunOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return domain.RunOutcome{}, false
	}
	return *s.outcome, true
}

// Wait blocks until the session finishes or ctx is done
func (s *Session) Wait(ctx context.Context) (domain.RunOutcome, error) {
	select {
	case <-s.done:
		outcome, _ := s.Outcome()
		return outcome, nil
	case <-ctx.Done():
		return domain.RunOutcome{}, ctx.Err()
	}
}
