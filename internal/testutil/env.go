// Package testutil provides utilities for testing foundryup in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points every environment knob the installer reads at a
// fresh temp directory, so tests never touch the user's real home,
// shell profile, or foundry installation. Cleanup is handled by
// t.TempDir.
//
// It returns the installation root the test should expect the installer
// to use.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	home := filepath.Join(tmpDir, "home")
	root := filepath.Join(tmpDir, "foundry")

	t.Setenv("HOME", home)
	t.Setenv("FOUNDRY_DIR", root)
	t.Setenv("SHELL", "/bin/bash")
	t.Setenv("PATH", "/usr/bin:/bin")
	t.Setenv("FOUNDRYUP_KEYRING", "")

	for _, dir := range []string{home, root} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return root
}
