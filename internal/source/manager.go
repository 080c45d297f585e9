package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/foundry-rs/foundryup/internal/errkind"
	"github.com/foundry-rs/foundryup/internal/ui"
)

// Manager orchestrates the source-build path: obtain a checkout of the
// requested branch under the installation root, then build and install
// the tools from it.
type Manager struct {
	foundryDir string
	binDir     string
	tools      []string
	git        Git
	builder    Builder
}

// Config holds configuration for the source manager.
type Config struct {
	// FoundryDir is the installation root (default: ~/.foundry).
	FoundryDir string
	// Tools are the executable names a previous install may have left
	// in bin; they are removed before building.
	Tools []string
	// Git performs clone/checkout/pull. Defaults to the go-git client.
	Git Git
	// Builder runs the build. Required (use FindCargo).
	Builder Builder
}

// NewManager creates a source manager.
func NewManager(config Config) (*Manager, error) {
	if config.FoundryDir == "" {
		return nil, fmt.Errorf("FoundryDir is required")
	}
	if config.Builder == nil {
		return nil, fmt.Errorf("Builder is required")
	}
	if config.Git == nil {
		config.Git = NewClient()
	}

	return &Manager{
		foundryDir: config.FoundryDir,
		binDir:     filepath.Join(config.FoundryDir, "bin"),
		tools:      config.Tools,
		git:        config.Git,
		builder:    config.Builder,
	}, nil
}

// SplitRepo splits an owner/name repository identifier. The author is
// the text before the first slash.
func SplitRepo(repo string) (author, name string, err error) {
	author, name, ok := strings.Cut(repo, "/")
	if !ok || author == "" || name == "" {
		return "", "", errkind.New(errkind.Usage, "invalid repository %q, expected owner/name", repo)
	}
	return author, name, nil
}

// CheckoutDir returns the local checkout path for a repository:
// the installation root joined with the owner/name identifier.
func (m *Manager) CheckoutDir(repo string) string {
	return filepath.Join(m.foundryDir, filepath.FromSlash(repo))
}

// Install obtains a checkout of repo at branch and builds the tools
// into bin.
//
// An existing checkout is updated in place: pull, checkout the branch,
// pull again so a just-switched branch is fast-forwarded too. A missing
// checkout is cloned fresh under the author directory, then switched to
// the branch. Either way the build step runs last and overwrites the
// installed binaries.
func (m *Manager) Install(ctx context.Context, repo, branch string) error {
	author, _, err := SplitRepo(repo)
	if err != nil {
		return err
	}

	// Stale-binary cleanup: never mix a previous binary-release install
	// with a fresh source build.
	if err := m.removeStaleBinaries(); err != nil {
		return err
	}

	checkout := m.CheckoutDir(repo)

	if info, err := os.Stat(checkout); err == nil && info.IsDir() {
		ui.Step("updating existing checkout %s", checkout)
		if err := m.git.Pull(ctx, checkout); err != nil {
			return err
		}
		if err := m.git.Checkout(ctx, checkout, branch); err != nil {
			return err
		}
		if err := m.git.Pull(ctx, checkout); err != nil {
			return err
		}
	} else {
		ui.Step("cloning %s", RemoteURL(repo))
		if err := os.MkdirAll(filepath.Join(m.foundryDir, author), 0755); err != nil {
			return errkind.Wrapf(errkind.VersionControl, err, "create author dir")
		}
		if err := m.git.Clone(ctx, RemoteURL(repo), checkout); err != nil {
			return err
		}
		if err := m.git.Checkout(ctx, checkout, branch); err != nil {
			return err
		}
	}

	ui.Step("building with cargo (this may take a while)")
	return m.builder.BuildAndInstall(ctx, checkout, m.foundryDir)
}

// removeStaleBinaries deletes previously installed tools from bin.
func (m *Manager) removeStaleBinaries() error {
	for _, tool := range m.tools {
		path := filepath.Join(m.binDir, tool)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errkind.Wrapf(errkind.Build, err, "remove stale binary %s", path)
		}
	}
	return nil
}
