// errors.go - Error taxonomy for vecrender

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/vecrender
License: GPLv3 or later
*/

package vecrender

import (
	"errors"
	"fmt"
)

// Sentinel conditions. Every error returned by this package wraps exactly one
// of these, so callers can branch with errors.Is.
var (
	// ErrConfiguration is returned at construction for unusable settings
	// (incompatible render mode, missing render fps, bad aspect ratio).
	ErrConfiguration = errors.New("configuration error")

	// ErrDependencyNotInstalled is returned when an optional backend (display
	// window, video encoder) is not available in this build or on this host.
	ErrDependencyNotInstalled = errors.New("dependency not installed")

	// ErrEnvContract is returned when the wrapped vector environment produces
	// render output that breaks its contract (wrong count, nil frames, mixed
	// frame sizes). It is never retried.
	ErrEnvContract = errors.New("vector env contract violation")

	// ErrNotRecording is returned by StopRecording when no recording is active.
	ErrNotRecording = errors.New("no recording in progress")

	// ErrInvalidLayout is returned by the grid layout searches for impossible
	// inputs (no cells, non-positive sizes or ratios).
	ErrInvalidLayout = errors.New("invalid grid layout input")
)

// Error provides detailed error context for rendering and recording operations
type Error struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Kind      error  // One of the sentinel errors above
	Err       error  // Underlying error if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vecrender %s failed: %v: %s: %v", e.Operation, e.Kind, e.Details, e.Err)
	}
	return fmt.Sprintf("vecrender %s failed: %v: %s", e.Operation, e.Kind, e.Details)
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, op, format string, args ...any) *Error {
	return &Error{Operation: op, Details: fmt.Sprintf(format, args...), Kind: kind}
}

func wrapError(kind error, op string, err error, format string, args ...any) *Error {
	return &Error{Operation: op, Details: fmt.Sprintf(format, args...), Kind: kind, Err: err}
}
