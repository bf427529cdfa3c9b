package domain

import "errors"

var (
	ErrEmptyURL       = errors.New("url is required")
	ErrEmptyTargetDir = errors.New("target directory is required")
	ErrInvalidMode    = errors.New("invalid media mode")
	ErrInvalidQuality = errors.New("invalid quality")

	// ErrSessionNotIdle is returned when Start is called on a session that
	// has already been started.
	ErrSessionNotIdle = errors.New("session is not idle")

	ErrRunActive    = errors.New("another download is already running")
	ErrRunNotFound  = errors.New("run not found")
	ErrRunNotActive = errors.New("run is not active")
)
