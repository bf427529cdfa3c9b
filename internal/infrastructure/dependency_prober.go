package infrastructure

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ToolStatus is the result of probing one external binary
type ToolStatus struct {
	Name      string `json:"name"`
	Binary    string `json:"binary,omitempty"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DependencyReport lists the probed tools
type DependencyReport struct {
	Downloader  ToolStatus `json:"downloader"`
	FFmpeg      ToolStatus `json:"ffmpeg"`
	Accelerator ToolStatus `json:"accelerator"`
}

// AcceleratorAvailable reports whether turbo mode may use the accelerator
func (r DependencyReport) AcceleratorAvailable() bool {
	return r.Accelerator.Available
}

// Tools returns the statuses in display order
func (r DependencyReport) Tools() []ToolStatus {
	return []ToolStatus{r.Downloader, r.FFmpeg, r.Accelerator}
}

// DependencyProber checks which external tools are installed by running
// them with --version
type DependencyProber struct {
	downloaders []string
	ffmpeg      string
	accelerator string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewDependencyProber creates a prober. downloader is tried first, then its
// ".exe" variant.
func NewDependencyProber(downloader, ffmpeg, accelerator string, timeout time.Duration, logger *zap.Logger) *DependencyProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	candidates := []string{downloader}
	if !strings.HasSuffix(downloader, ".exe") {
		candidates = append(candidates, downloader+".exe")
	}
	return &DependencyProber{
		downloaders: candidates,
		ffmpeg:      ffmpeg,
		accelerator: accelerator,
		timeout:     timeout,
		logger:      logger,
	}
}

// Probe checks all tools concurrently
func (p *DependencyProber) Probe(ctx context.Context) DependencyReport {
	var report DependencyReport
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		report.Downloader = p.probeFirst(ctx, "yt-dlp", p.downloaders, "--version")
	}()
	go func() {
		defer wg.Done()
		// ffmpeg only knows the single-dash form
		report.FFmpeg = p.probeFirst(ctx, "ffmpeg", []string{p.ffmpeg}, "-version")
	}()
	go func() {
		defer wg.Done()
		report.Accelerator = p.probeFirst(ctx, AcceleratorName, []string{p.accelerator}, "--version")
	}()
	wg.Wait()

	for _, tool := range report.Tools() {
		p.logger.Debug("Probed dependency",
			zap.String("name", tool.Name),
			zap.Bool("available", tool.Available),
			zap.String("version", tool.Version))
	}

	return report
}

// ProbeAccelerator only checks the accelerator, for callers that just need
// the turbo flag
func (p *DependencyProber) ProbeAccelerator(ctx context.Context) bool {
	return p.probeFirst(ctx, AcceleratorName, []string{p.accelerator}, "--version").Available
}

func (p *DependencyProber) probeFirst(ctx context.Context, name string, binaries []string, versionFlag string) ToolStatus {
	status := ToolStatus{Name: name}
	for _, binary := range binaries {
		if binary == "" {
			continue
		}
		version, err := p.version(ctx, binary, versionFlag)
		if err != nil {
			status.Error = err.Error()
			continue
		}
		return ToolStatus{Name: name, Binary: binary, Available: true, Version: version}
	}
	return status
}

func (p *DependencyProber) version(ctx context.Context, binary, versionFlag string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, versionFlag).Output()
	if err != nil {
		return "", err
	}
	return firstLine(string(output)), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
