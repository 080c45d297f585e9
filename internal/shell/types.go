// Package shell wires the bin directory onto the user's PATH: it
// detects the login shell from the environment, picks the matching
// profile file, and appends an export line exactly once.
package shell

import "fmt"

// Type represents a supported login shell.
type Type string

const (
	// Bash is the Bourne-again shell.
	Bash Type = "bash"
	// Zsh is the Z shell.
	Zsh Type = "zsh"
	// Fish is the fish shell.
	Fish Type = "fish"
	// Unknown is any unrecognized or undetectable shell.
	Unknown Type = "unknown"
)

// String returns the shell name.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the shell is in the supported set.
func (t Type) IsValid() bool {
	switch t {
	case Bash, Zsh, Fish:
		return true
	default:
		return false
	}
}

// Result describes the outcome of PATH configuration.
type Result struct {
	// Shell is the detected shell type.
	Shell Type
	// Profile is the path of the shell's profile file.
	Profile string
	// ExportLine is the line that puts bin on PATH for this shell.
	ExportLine string
	// Added reports whether the line was appended this run.
	Added bool
	// AlreadyOnPath reports that the bin directory was found in the
	// current PATH value, so the profile was left alone.
	AlreadyOnPath bool
	// AlreadyInProfile reports that the profile already carried the
	// export line from a previous run.
	AlreadyInProfile bool
}

// ProfileError reports a failed profile file operation.
type ProfileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ProfileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("profile %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("profile %s: %s", e.Path, e.Message)
}

func (e *ProfileError) Unwrap() error {
	return e.Cause
}
