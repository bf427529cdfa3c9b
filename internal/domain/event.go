package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProgressSignal is the structured part of one progress line. Every field is
// optional: a nil Percent or an empty string means the token was not found.
type ProgressSignal struct {
	Percent *float64 `json:"percent,omitempty"`
	Size    string   `json:"size,omitempty"`
	Speed   string   `json:"speed,omitempty"`
	ETA     string   `json:"eta,omitempty"`
}

// IsEmpty reports whether no field matched
func (p ProgressSignal) IsEmpty() bool {
	return p.Percent == nil && p.Size == "" && p.Speed == "" && p.ETA == ""
}

// String renders the matched fields for status lines, e.g.
// "10.5% | size 50.2MiB | speed 1.2MiB/s | eta 00:30".
func (p ProgressSignal) String() string {
	var parts []string
	if p.Percent != nil {
		parts = append(parts, fmt.Sprintf("%.1f%%", *p.Percent))
	}
	if p.Size != "" {
		parts = append(parts, "size "+p.Size)
	}
	if p.Speed != "" {
		parts = append(parts, "speed "+p.Speed)
	}
	if p.ETA != "" {
		parts = append(parts, "eta "+p.ETA)
	}
	return strings.Join(parts, " | ")
}

// EventKind tags a RunEvent
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventError    EventKind = "error"
	EventWarning  EventKind = "warning"
	EventLine     EventKind = "line"
)

// RunEvent is one classified output line of the external tool
type RunEvent struct {
	Seq      int             `json:"seq"`
	Kind     EventKind       `json:"kind"`
	Line     string          `json:"line"`
	Progress *ProgressSignal `json:"progress,omitempty"`
	Time     time.Time       `json:"time"`
}

// OutcomeKind tags a RunOutcome
type OutcomeKind string

const (
	OutcomeSucceeded    OutcomeKind = "succeeded"
	OutcomeFailed       OutcomeKind = "failed"
	OutcomeCancelled    OutcomeKind = "cancelled"
	OutcomeLaunchFailed OutcomeKind = "launch_failed"
)

// ExitCodeUnknown is recorded when the process was killed by a signal or its
// status could not be retrieved.
const ExitCodeUnknown = -1

// NoErrorCapturedMessage stands in for the error list when a run failed
// without printing any error line.
const NoErrorCapturedMessage = "download failed, no specific error captured"

// RunOutcome is produced exactly once per session
type RunOutcome struct {
	Kind     OutcomeKind `json:"kind"`
	ExitCode int         `json:"exit_code"`
	Errors   []string    `json:"errors,omitempty"`
	Warnings int         `json:"warnings"`
	Reason   string      `json:"reason,omitempty"`
}

// Succeeded reports whether the run finished cleanly
func (o RunOutcome) Succeeded() bool {
	return o.Kind == OutcomeSucceeded
}

// ErrorSummary joins the collected error lines, or returns the generic
// message when none were captured.
func (o RunOutcome) ErrorSummary() string {
	if len(o.Errors) == 0 {
		return NoErrorCapturedMessage
	}
	return strings.Join(o.Errors, "\n")
}

// Summary renders the outcome for a human without looking at raw output
func (o RunOutcome) Summary() string {
	switch o.Kind {
	case OutcomeSucceeded:
		if o.Warnings > 0 {
			return fmt.Sprintf("download completed with %d warning(s)", o.Warnings)
		}
		return "download completed"
	case OutcomeFailed:
		return fmt.Sprintf("download failed (exit code %d):\n%s", o.ExitCode, o.ErrorSummary())
	case OutcomeCancelled:
		return "download cancelled"
	case OutcomeLaunchFailed:
		return fmt.Sprintf("could not start downloader: %s", o.Reason)
	default:
		return fmt.Sprintf("unknown outcome %q", o.Kind)
	}
}

// SessionState is the lifecycle of one download session
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionRunning    SessionState = "running"
	SessionCancelling SessionState = "cancelling"
	SessionFinished   SessionState = "finished"
)

// EventSink receives everything a session reports, in order. Notices are
// advisory texts (chosen downloader path, command line) and are not counted
// as RunEvents. OnOutcome is called exactly once, after the last OnEvent.
type EventSink interface {
	OnNotice(message string)
	OnEvent(event RunEvent)
	OnOutcome(outcome RunOutcome)
}
