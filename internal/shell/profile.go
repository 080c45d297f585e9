package shell

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProfilePath returns the profile file for a shell under homeDir.
func ProfilePath(shell Type, homeDir string) (string, error) {
	switch shell {
	case Bash:
		return filepath.Join(homeDir, ".bashrc"), nil
	case Zsh:
		return filepath.Join(homeDir, ".zshrc"), nil
	case Fish:
		return filepath.Join(homeDir, ".config", "fish", "config.fish"), nil
	default:
		return "", fmt.Errorf("no profile file for shell %q", shell)
	}
}

// ExportLine returns the line that appends binDir to PATH for a shell.
func ExportLine(shell Type, binDir string) string {
	if shell == Fish {
		return fmt.Sprintf("fish_add_path -a %s", binDir)
	}
	return fmt.Sprintf("export PATH=\"$PATH:%s\"", binDir)
}

// OnPath reports whether dir is an entry of the colon-delimited PATH
// value. Entries match exactly (after cleaning); a dir that is merely a
// prefix of another entry is not on the PATH.
func OnPath(pathEnv, dir string) bool {
	if dir == "" {
		return false
	}
	want := filepath.Clean(dir)
	for _, entry := range strings.Split(pathEnv, ":") {
		if entry == "" {
			continue
		}
		if filepath.Clean(entry) == want {
			return true
		}
	}
	return false
}

// HasExportLine reports whether the profile already puts binDir on
// PATH. A missing profile simply has no line yet.
func HasExportLine(profilePath, binDir string) (bool, error) {
	file, err := os.Open(profilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &ProfileError{Path: profilePath, Message: "open", Cause: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, binDir) && (strings.Contains(line, "PATH") || strings.Contains(line, "fish_add_path")) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, &ProfileError{Path: profilePath, Message: "read", Cause: err}
	}
	return false, nil
}

// AppendExportLine appends a blank line and the export line to the
// profile, creating it (and its directory) when absent. The write is
// atomic: content goes to a temporary sibling that replaces the profile
// by rename.
func AppendExportLine(profilePath, exportLine string) error {
	dir := filepath.Dir(profilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &ProfileError{Path: profilePath, Message: "create parent directory", Cause: err}
	}

	existing, err := os.ReadFile(profilePath)
	if err != nil && !os.IsNotExist(err) {
		return &ProfileError{Path: profilePath, Message: "read", Cause: err}
	}

	tmpFile, err := os.CreateTemp(dir, ".foundryup-tmp-*")
	if err != nil {
		return &ProfileError{Path: profilePath, Message: "create temporary file", Cause: err}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if len(existing) > 0 {
		if _, err := tmpFile.Write(existing); err != nil {
			tmpFile.Close()
			return &ProfileError{Path: profilePath, Message: "write existing content", Cause: err}
		}
		if !strings.HasSuffix(string(existing), "\n") {
			if _, err := tmpFile.WriteString("\n"); err != nil {
				tmpFile.Close()
				return &ProfileError{Path: profilePath, Message: "write newline", Cause: err}
			}
		}
	}

	if _, err := tmpFile.WriteString("\n" + exportLine + "\n"); err != nil {
		tmpFile.Close()
		return &ProfileError{Path: profilePath, Message: "write export line", Cause: err}
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &ProfileError{Path: profilePath, Message: "sync", Cause: err}
	}
	tmpFile.Close()

	if err := os.Rename(tmpPath, profilePath); err != nil {
		return &ProfileError{Path: profilePath, Message: "rename temporary file", Cause: err}
	}
	return nil
}
