package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yourusername/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// AcceleratorProber tells whether the turbo accelerator is installed
type AcceleratorProber interface {
	ProbeAccelerator(ctx context.Context) bool
}

// RunNotifier is told when runs start and finish
type RunNotifier interface {
	NotifyRunStarted(url string)
	NotifyRunFinished(url string, outcome domain.RunOutcome)
}

// RunRequest is a download request where empty fields fall back to the
// configured defaults
type RunRequest struct {
	URL       string `json:"url" binding:"required"`
	TargetDir string `json:"target_dir"`
	Mode      string `json:"mode"`
	Quality   string `json:"quality"`
	Turbo     *bool  `json:"turbo"`
}

// RunManager owns the server's sessions. Only one runs at a time.
type RunManager struct {
	config        *domain.Config
	repo          domain.RunRepository
	notifier      RunNotifier
	prober        AcceleratorProber
	logger        *zap.Logger
	sessionLogger *zap.Logger

	mu     sync.RWMutex
	runs   map[string]*managedRun
	active *managedRun
}

type managedRun struct {
	session *Session
	hub     *EventHub

	mu          sync.Mutex
	record      *domain.RunRecord
	lastPercent int
}

// NewRunManager creates a new run manager. sessionLogger receives every
// session's output; notifier and prober may be nil.
func NewRunManager(
	config *domain.Config,
	repo domain.RunRepository,
	notifier RunNotifier,
	prober AcceleratorProber,
	logger *zap.Logger,
	sessionLogger *zap.Logger,
) *RunManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionLogger == nil {
		sessionLogger = logger
	}
	return &RunManager{
		config:        config,
		repo:          repo,
		notifier:      notifier,
		prober:        prober,
		logger:        logger,
		sessionLogger: sessionLogger,
		runs:          make(map[string]*managedRun),
	}
}

// ResolveDownloadConfig fills the request's empty fields from defaults. The
// accelerator is only probed when turbo is on.
func ResolveDownloadConfig(ctx context.Context, defaults domain.DefaultsConfig, req RunRequest, prober AcceleratorProber) domain.DownloadConfig {
	cfg := domain.DownloadConfig{
		URL:       req.URL,
		TargetDir: req.TargetDir,
		Mode:      domain.MediaMode(strings.ToLower(strings.TrimSpace(req.Mode))),
		Quality:   domain.Quality(strings.ToLower(strings.TrimSpace(req.Quality))),
		Turbo:     defaults.Turbo,
	}
	if strings.TrimSpace(cfg.TargetDir) == "" {
		cfg.TargetDir = defaults.OutputDir
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.MediaMode(defaults.Mode)
	}
	if cfg.Quality == "" {
		cfg.Quality = domain.Quality(defaults.Quality)
	}
	if req.Turbo != nil {
		cfg.Turbo = *req.Turbo
	}
	if cfg.Turbo && prober != nil {
		cfg.AcceleratorAvailable = prober.ProbeAccelerator(ctx)
	}
	return cfg.Normalize()
}

// BuildDownloadConfig fills the request's empty fields from the configured
// defaults
func (m *RunManager) BuildDownloadConfig(ctx context.Context, req RunRequest) domain.DownloadConfig {
	return ResolveDownloadConfig(ctx, m.config.Defaults, req, m.prober)
}

// StartRun validates the request and starts a session for it
func (m *RunManager) StartRun(ctx context.Context, req RunRequest) (*domain.RunRecord, error) {
	cfg := m.BuildDownloadConfig(ctx, req)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	run := &managedRun{hub: NewEventHub(), lastPercent: -1}
	// the record is finished before the hub publishes the outcome, so a
	// client reacting to it reads the final state
	sink := NewMultiSink(
		SinkFuncs{
			Event:   func(e domain.RunEvent) { m.recordProgress(run, e) },
			Outcome: func(o domain.RunOutcome) { m.recordOutcome(run, o) },
		},
		run.hub,
		NewLogSink(m.sessionLogger.With(zap.String("session_id", id))),
	)

	m.mu.Lock()
	if m.active != nil {
		m.mu.Unlock()
		return nil, domain.ErrRunActive
	}

	session := NewSession(cfg, sink, SessionOptions{
		ID:     id,
		Binary: m.config.Tool.YTDLPBinary,
		Logger: m.logger,
	})
	run.session = session
	run.record = domain.NewRunRecord(id, cfg)

	if err := m.repo.Create(run.record); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	m.runs[session.ID()] = run
	m.active = run
	m.mu.Unlock()

	m.sessionLogger.Info("Run started",
		zap.String("session_id", session.ID()),
		zap.String("url", cfg.URL),
		zap.String("target_dir", cfg.TargetDir))

	if m.notifier != nil {
		m.notifier.NotifyRunStarted(cfg.URL)
	}

	// the session outlives the request, so it gets its own context
	if err := session.Start(context.Background()); err != nil {
		m.discard(run)
		return nil, err
	}

	return m.snapshot(run), nil
}

// discard forgets a run whose session refused to start, including its
// stored record
func (m *RunManager) discard(run *managedRun) {
	id := run.session.ID()

	m.mu.Lock()
	delete(m.runs, id)
	if m.active == run {
		m.active = nil
	}
	m.mu.Unlock()

	if err := m.repo.Delete(id); err != nil {
		m.logger.Warn("Failed to remove rejected run", zap.String("id", id), zap.Error(err))
	}
}

func (m *RunManager) recordProgress(run *managedRun, event domain.RunEvent) {
	if event.Kind != domain.EventProgress || event.Progress == nil || event.Progress.Percent == nil {
		return
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	// one write per whole percent is plenty for listings
	percent := int(*event.Progress.Percent)
	if percent == run.lastPercent || run.record.IsTerminal() {
		return
	}
	run.lastPercent = percent
	run.record.MarkProgress(*event.Progress.Percent)
	if err := m.repo.Update(run.record); err != nil {
		m.logger.Warn("Failed to store progress", zap.String("id", run.record.ID), zap.Error(err))
	}
}

func (m *RunManager) recordOutcome(run *managedRun, outcome domain.RunOutcome) {
	run.mu.Lock()
	run.record.MarkFinished(outcome)
	if err := m.repo.Update(run.record); err != nil {
		m.logger.Error("Failed to store run outcome", zap.String("id", run.record.ID), zap.Error(err))
	}
	url := run.record.URL
	run.mu.Unlock()

	m.mu.Lock()
	if m.active == run {
		m.active = nil
	}
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.NotifyRunFinished(url, outcome)
	}
}

func (m *RunManager) snapshot(run *managedRun) *domain.RunRecord {
	run.mu.Lock()
	defer run.mu.Unlock()
	record := *run.record
	return &record
}

func (m *RunManager) lookup(id string) (*managedRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	return run, nil
}

// CancelRun asks a running session to stop
func (m *RunManager) CancelRun(id string) (*domain.RunRecord, error) {
	run, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	if !run.session.Cancel() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrRunNotActive, id, run.session.State())
	}

	run.mu.Lock()
	if !run.record.IsTerminal() {
		run.record.MarkCancelling()
		if err := m.repo.Update(run.record); err != nil {
			m.logger.Warn("Failed to store cancel request", zap.String("id", id), zap.Error(err))
		}
	}
	run.mu.Unlock()

	m.logger.Info("Run cancel requested", zap.String("id", id))
	return m.snapshot(run), nil
}

// GetRun returns the stored record of a run
func (m *RunManager) GetRun(id string) (*domain.RunRecord, error) {
	return m.repo.FindByID(id)
}

// ListRuns returns runs matching filters, newest first
func (m *RunManager) ListRuns(filters map[string]interface{}) ([]*domain.RunRecord, error) {
	return m.repo.FindAll(filters)
}

// GetStats returns run statistics
func (m *RunManager) GetStats() (*domain.RunStats, error) {
	return m.repo.GetStats()
}

// ActiveRun returns the running session's record, if any
func (m *RunManager) ActiveRun() (*domain.RunRecord, bool) {
	m.mu.RLock()
	run := m.active
	m.mu.RUnlock()

	if run == nil {
		return nil, false
	}
	return m.snapshot(run), true
}

// Subscribe returns the history of a run plus a channel of its later
// messages
func (m *RunManager) Subscribe(id string) ([]HubMessage, <-chan HubMessage, func(), error) {
	run, err := m.lookup(id)
	if err != nil {
		return nil, nil, nil, err
	}
	replay, live, unsubscribe := run.hub.Subscribe()
	return replay, live, unsubscribe, nil
}

// Wait blocks until the run has finished or ctx is done
func (m *RunManager) Wait(ctx context.Context, id string) (domain.RunOutcome, error) {
	run, err := m.lookup(id)
	if err != nil {
		return domain.RunOutcome{}, err
	}
	return run.session.Wait(ctx)
}

// Shutdown cancels the active run and waits for it to finish
func (m *RunManager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	run := m.active
	m.mu.RUnlock()

	if run == nil {
		return nil
	}

	m.logger.Info("Cancelling active run for shutdown", zap.String("id", run.session.ID()))
	run.session.Cancel()
	_, err := run.session.Wait(ctx)
	return err
}
