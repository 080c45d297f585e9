package shell

import (
	"fmt"
	"os"

	"github.com/foundry-rs/foundryup/internal/errkind"
)

// Manager configures the user's shell so the bin directory is on PATH.
type Manager struct {
	binDir string
}

// NewManager creates a shell manager for a bin directory.
func NewManager(binDir string) (*Manager, error) {
	if binDir == "" {
		return nil, fmt.Errorf("binDir is required")
	}
	return &Manager{binDir: binDir}, nil
}

// Configure detects the shell from shellEnv ($SHELL) and ensures the
// bin directory ends up on PATH via the shell's profile file.
//
// An unrecognized shell returns a ShellUndetected error: by this point
// the binaries are installed, so the caller must present it as a
// degraded success with manual instructions, not a failed install. The
// export line is appended at most once: never when the bin directory is
// already a colon-bounded PATH entry, and never when a previous run
// already wrote it to the profile.
func (m *Manager) Configure(shellEnv, pathEnv string) (*Result, error) {
	detected := Detect(shellEnv)
	if !detected.IsValid() {
		return nil, errkind.New(errkind.ShellUndetected,
			"could not detect shell from SHELL=%q (supported: bash, zsh, fish)", shellEnv)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errkind.Wrapf(errkind.ShellUndetected, err, "get home directory")
	}

	profile, err := ProfilePath(detected, homeDir)
	if err != nil {
		return nil, errkind.Wrap(errkind.ShellUndetected, err)
	}

	result := &Result{
		Shell:      detected,
		Profile:    profile,
		ExportLine: ExportLine(detected, m.binDir),
	}

	if OnPath(pathEnv, m.binDir) {
		result.AlreadyOnPath = true
		return result, nil
	}

	inProfile, err := HasExportLine(profile, m.binDir)
	if err != nil {
		return nil, err
	}
	if inProfile {
		result.AlreadyInProfile = true
		return result, nil
	}

	if err := AppendExportLine(profile, result.ExportLine); err != nil {
		return nil, err
	}
	result.Added = true
	return result, nil
}
