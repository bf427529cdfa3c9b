package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/yourusername/vidgrab/internal/domain"
	"go.uber.org/zap"
)

const maxLineSize = 1024 * 1024

// ErrAlreadyStarted is returned when Start is called twice
var ErrAlreadyStarted = errors.New("process already started")

// LaunchError reports that the external tool could not be started at all
type LaunchError struct {
	Binary string
	Cause  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Binary, e.Cause)
}

func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// ProcessSupervisor runs one external process, reads its merged stdout and
// stderr line by line and turns each line into a RunEvent.
type ProcessSupervisor struct {
	binary     string
	classifier *LineClassifier
	logger     *zap.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	output    *os.File
	exited    bool
	cancelled bool
	done      chan struct{}
}

// NewProcessSupervisor creates a supervisor for binary
func NewProcessSupervisor(binary string, classifier *LineClassifier, logger *zap.Logger) *ProcessSupervisor {
	if classifier == nil {
		classifier = NewDefaultLineClassifier()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessSupervisor{
		binary:     binary,
		classifier: classifier,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start launches the process. Cancelling ctx terminates it the same way
// Cancel does.
func (s *ProcessSupervisor) Start(ctx context.Context, args []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return ErrAlreadyStarted
	}

	path, err := exec.LookPath(s.binary)
	if err != nil {
		return &LaunchError{Binary: s.binary, Cause: err}
	}

	// stdout and stderr share one pipe so lines keep their relative order
	pr, pw, err := os.Pipe()
	if err != nil {
		return &LaunchError{Binary: s.binary, Cause: fmt.Errorf("failed to create output pipe: %w", err)}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return terminateProcess(cmd)
	}

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return &LaunchError{Binary: s.binary, Cause: err}
	}
	// the child holds its own copy of the write end
	pw.Close()

	s.cmd = cmd
	s.output = pr

	s.logger.Info("Process started",
		zap.Int("pid", cmd.Process.Pid),
		zap.String("command", FormatCommandLine(s.binary, args)))

	return nil
}

// Run reads the output until the process closes it, calling emit for every
// forwarded line in read order, then waits for the process to exit and
// returns its exit code. The code is domain.ExitCodeUnknown when the process
// was killed by a signal or never started.
func (s *ProcessSupervisor) Run(emit func(domain.RunEvent)) int {
	s.mu.Lock()
	cmd, output := s.cmd, s.output
	s.mu.Unlock()

	if cmd == nil {
		return domain.ExitCodeUnknown
	}
	defer close(s.done)

	s.readOutput(output, emit)
	output.Close()

	waitErr := cmd.Wait()

	s.mu.Lock()
	s.exited = true
	s.mu.Unlock()

	exitCode := domain.ExitCodeUnknown
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	s.logger.Info("Process exited",
		zap.Int("pid", cmd.Process.Pid),
		zap.Int("exit_code", exitCode),
		zap.Error(waitErr))

	return exitCode
}

func (s *ProcessSupervisor) readOutput(r io.Reader, emit func(domain.RunEvent)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	scanner.Split(scanOutputLines)

	seq := 0
	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "\uFFFD")
		event, ok := s.classifier.Classify(line)
		if !ok {
			continue
		}
		seq++
		event.Seq = seq
		emit(event)
	}

	if err := scanner.Err(); err != nil {
		s.logger.Warn("Output reader stopped, discarding remaining output", zap.Error(err))
		// keep the child from blocking on a full pipe
		io.Copy(io.Discard, r)
	}
}

// scanOutputLines splits on '\n' or '\r' so carriage-return progress
// updates arrive as separate lines.
func scanOutputLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Cancel asks the process to terminate. It returns false when there is
// nothing to cancel: not started, already exited or already cancelled.
func (s *ProcessSupervisor) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.exited || s.cancelled {
		return false
	}
	s.cancelled = true

	if err := terminateProcess(s.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.logger.Warn("Failed to terminate process",
			zap.Int("pid", s.cmd.Process.Pid),
			zap.Error(err))
	}
	return true
}

// Done is closed once Run has returned
func (s *ProcessSupervisor) Done() <-chan struct{} {
	return s.done
}
