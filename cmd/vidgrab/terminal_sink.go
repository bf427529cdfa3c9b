package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/yourusername/vidgrab/internal/domain"
)

// barScale gives the bar tenth-of-a-percent resolution
const barScale = 10

// TerminalSink renders a session on a terminal: one progress bar for
// progress events, plain lines for everything else.
type TerminalSink struct {
	out   io.Writer
	quiet bool

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewTerminalSink creates a sink writing to out. A quiet sink only prints
// errors and the outcome.
func NewTerminalSink(out io.Writer, quiet bool) *TerminalSink {
	return &TerminalSink{out: out, quiet: quiet}
}

func (s *TerminalSink) OnNotice(message string) {
	if s.quiet {
		return
	}
	s.println("» " + message)
}

func (s *TerminalSink) OnEvent(event domain.RunEvent) {
	switch event.Kind {
	case domain.EventProgress:
		if event.Progress != nil {
			s.progress(*event.Progress)
		}
	case domain.EventError:
		s.println(event.Line)
	default:
		if !s.quiet {
			s.println(event.Line)
		}
	}
}

func (s *TerminalSink) OnOutcome(outcome domain.RunOutcome) {
	s.mu.Lock()
	if s.bar != nil {
		if outcome.Kind == domain.OutcomeSucceeded {
			s.bar.Finish()
		} else {
			s.bar.Exit()
		}
		s.bar = nil
	}
	s.mu.Unlock()

	s.println(outcome.Summary())
}

func (s *TerminalSink) progress(p domain.ProgressSignal) {
	if s.quiet {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar == nil {
		s.bar = progressbar.NewOptions(100*barScale,
			progressbar.OptionSetWriter(s.out),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetElapsedTime(false),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowDescriptionAtLineEnd(),
			progressbar.OptionEnableColorCodes(false),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	desc := p
	desc.Percent = nil
	s.bar.Describe(desc.String())
	if p.Percent != nil {
		s.bar.Set(int(*p.Percent * barScale))
	}
}

// println writes a line above the bar
func (s *TerminalSink) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		s.bar.Clear()
	}
	fmt.Fprintln(s.out, line)
}
