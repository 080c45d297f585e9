package shell

import (
	"path/filepath"
	"strings"
)

// Detect maps the value of the SHELL environment variable to a shell
// type by its basename. An empty or unrecognized value yields Unknown;
// the caller decides how to degrade.
func Detect(shellEnv string) Type {
	if shellEnv == "" {
		return Unknown
	}

	switch strings.ToLower(filepath.Base(shellEnv)) {
	case "bash":
		return Bash
	case "zsh":
		return Zsh
	case "fish":
		return Fish
	default:
		return Unknown
	}
}

// Supported returns the shells the installer can configure.
func Supported() []Type {
	return []Type{Bash, Zsh, Fish}
}
