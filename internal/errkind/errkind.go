// Package errkind classifies fatal installer failures so the CLI can map
// each one to a distinct exit code.
//
// Every failure in the install flow is terminal. The kinds mirror the
// steps of the flow: flag parsing, platform detection, toolchain lookup,
// fetch, extract/verify, clone/pull/checkout, build, and shell setup.
// ShellUndetected is special: by the time it occurs the binaries are
// already installed, so it marks a degraded success rather than a
// failed install.
package errkind

import (
	"errors"
	"fmt"
)

// Kind identifies the class of an installer failure.
type Kind int

const (
	// Unknown covers failures that don't fit a more specific kind.
	Unknown Kind = iota
	// Usage indicates a bad or unrecognized command-line token.
	Usage
	// PlatformUnsupported indicates the host OS has no release builds.
	PlatformUnsupported
	// ToolchainMissing indicates the build toolchain (cargo) is absent.
	ToolchainMissing
	// Network indicates a download failed.
	Network
	// Archive indicates decompression, extraction, or verification failed.
	Archive
	// VersionControl indicates a clone, pull, or checkout failed.
	VersionControl
	// Build indicates the source build failed.
	Build
	// ShellUndetected indicates the login shell could not be recognized,
	// so PATH setup was skipped. Binaries are installed at this point.
	ShellUndetected
)

// String returns a short human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Usage:
		return "usage"
	case PlatformUnsupported:
		return "unsupported platform"
	case ToolchainMissing:
		return "missing toolchain"
	case Network:
		return "network"
	case Archive:
		return "archive"
	case VersionControl:
		return "version control"
	case Build:
		return "build"
	case ShellUndetected:
		return "shell undetected"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code associated with the kind.
// Success is 0; every kind here is non-zero.
func (k Kind) ExitCode() int {
	switch k {
	case Usage:
		return 2
	case PlatformUnsupported:
		return 3
	case ToolchainMissing:
		return 4
	case Network:
		return 5
	case Archive:
		return 6
	case VersionControl:
		return 7
	case Build:
		return 8
	case ShellUndetected:
		return 9
	default:
		return 1
	}
}

// Error is a classified installer error. It wraps an underlying cause
// and preserves the chain for errors.Is/errors.As checks.
type Error struct {
	Kind Kind
	Err  error
}

// Error returns the underlying error message.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error from a format string.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error. A nil error stays nil. If the error
// is already classified, its original kind is kept.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// Wrapf classifies an error with additional context, preserving the
// chain via %w.
func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	args = append(args, err)
	return &Error{Kind: kind, Err: fmt.Errorf(format+": %w", args...)}
}

// KindOf extracts the kind from an error chain. Unclassified errors
// report Unknown.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return Unknown
}
