package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a field stays invalid after the
	// configured number of prompts.
	ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
	// ErrNotSubmitted is returned when the form is still invalid after every
	// field has been prompted.
	ErrNotSubmitted = errors.New("tui: form not submitted")
)
