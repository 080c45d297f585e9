package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/foundry-rs/foundryup/internal/errkind"
	"github.com/foundry-rs/foundryup/internal/platform"
	"github.com/foundry-rs/foundryup/internal/release"
	"github.com/foundry-rs/foundryup/internal/shell"
	"github.com/foundry-rs/foundryup/internal/source"
	"github.com/foundry-rs/foundryup/internal/transaction"
	"github.com/foundry-rs/foundryup/internal/ui"
)

const (
	// DefaultRepo is the upstream Foundry repository. Installs from any
	// other repository always build from source.
	DefaultRepo = "foundry-rs/foundry"
	// DefaultVersion is the release tag installed when no version
	// override is given on the binary-release path.
	DefaultVersion = "nightly"
	// DefaultBranch is the branch built when no branch override is
	// given on the source-build path.
	DefaultBranch = "master"
	// EnvFoundryDir overrides the installation root (default ~/.foundry).
	EnvFoundryDir = "FOUNDRY_DIR"
)

// foundryTools are the executables every install produces.
var foundryTools = []string{"forge", "cast"}

// options holds the parsed command line. An empty Branch or Version
// means the flag was not given; the route decision depends on that
// distinction.
type options struct {
	Repo    string
	Branch  string
	Version string
	Help    bool
}

// parseArgs parses the command line. Every flag takes exactly one
// following argument; any unrecognized token is a usage error naming
// that token.
func parseArgs(args []string) (*options, error) {
	opts := &options{Repo: DefaultRepo}

	takeValue := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", errkind.New(errkind.Usage, "flag %s requires a value", flag)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-r", "--repo":
			value, err := takeValue(i, arg)
			if err != nil {
				return nil, err
			}
			opts.Repo = value
			i++
		case "-b", "--branch":
			value, err := takeValue(i, arg)
			if err != nil {
				return nil, err
			}
			opts.Branch = value
			i++
		case "-v", "--version":
			value, err := takeValue(i, arg)
			if err != nil {
				return nil, err
			}
			opts.Version = value
			i++
		case "-h", "--help":
			opts.Help = true
		case "--":
			// Option parsing stops here. foundryup takes no positional
			// arguments, so anything left over is a usage error.
			if i+1 < len(args) {
				return nil, errkind.New(errkind.Usage, "unexpected argument %q", args[i+1])
			}
			return opts, nil
		default:
			return nil, errkind.New(errkind.Usage, "unrecognized option %q (run foundryup --help)", arg)
		}
	}

	return opts, nil
}

// useBinaryRelease decides the install route: prebuilt archives exist
// only for the default repository, and a branch override always means a
// source build.
func useBinaryRelease(opts *options) bool {
	return opts.Repo == DefaultRepo && opts.Branch == ""
}

// resolveFoundryDir returns the installation root: FOUNDRY_DIR when
// set, otherwise ~/.foundry.
func resolveFoundryDir() (string, error) {
	if dir := os.Getenv(EnvFoundryDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".foundry"), nil
}

// createDirectoryStructure creates the directories every install needs.
// Idempotent, safe to call on an existing root.
func createDirectoryStructure(foundryDir string) error {
	dirs := []string{
		foundryDir,
		filepath.Join(foundryDir, "bin"),
		filepath.Join(foundryDir, "tmp"),
		filepath.Join(foundryDir, "cache", "downloads"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `foundryup %s: the installer for Foundry (forge and cast)

Usage:
  foundryup [options]

Options:
  -r, --repo <owner/name>  install from this repository (default %s)
  -b, --branch <name>      build this branch from source (default %s)
  -v, --version <tag>      install this release version (default %s)
  -h, --help               print this help and exit

With no options, foundryup downloads the latest nightly release build
for your platform. A repository or branch override switches to building
from source with cargo.

Environment:
  FOUNDRY_DIR  installation root (default ~/.foundry)
`, Version, DefaultRepo, DefaultBranch, DefaultVersion)
}

// runInstall handles a foundryup invocation end to end: resolve the
// install route, produce the binaries in <root>/bin, and put the bin
// directory on the user's PATH.
func runInstall(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if opts.Help {
		printUsage(os.Stdout)
		return nil
	}

	ctx := context.Background()

	foundryDir, err := resolveFoundryDir()
	if err != nil {
		return err
	}
	binDir := filepath.Join(foundryDir, "bin")

	if err := createDirectoryStructure(foundryDir); err != nil {
		return err
	}

	lock, err := transaction.AcquireLock(filepath.Join(foundryDir, "tmp"))
	if err != nil {
		return err
	}
	defer lock.Release()

	var receipt *transaction.Receipt
	if useBinaryRelease(opts) {
		version := opts.Version
		if version == "" {
			version = DefaultVersion
		}

		platformInfo, err := platform.NewDetector().Detect(ctx)
		if err != nil {
			return err
		}
		ui.Step("installing foundry %s (%s release build)", version, opts.Repo)

		manager, err := release.NewManager(release.Config{
			FoundryDir:   foundryDir,
			PlatformInfo: platformInfo,
			Tools:        foundryTools,
			KeyringPath:  os.Getenv(release.EnvKeyring),
		})
		if err != nil {
			return err
		}

		result, err := manager.Install(ctx, release.Descriptor{Repo: opts.Repo, Version: version})
		if err != nil {
			return err
		}
		if result.Verified != "" {
			ui.Detail("archive verified (%s)", result.Verified)
		}

		receipt = transaction.NewReceipt(transaction.ModeRelease, opts.Repo, version)
		receipt.Platform = result.Archive.PlatformTag
		receipt.Arch = result.Archive.ArchTag
	} else {
		branch := opts.Branch
		if branch == "" {
			branch = DefaultBranch
		}
		ui.Step("installing foundry from source (%s, branch %s)", opts.Repo, branch)

		builder, err := source.FindCargo()
		if err != nil {
			return err
		}
		manager, err := source.NewManager(source.Config{
			FoundryDir: foundryDir,
			Tools:      foundryTools,
			Builder:    builder,
		})
		if err != nil {
			return err
		}

		if err := manager.Install(ctx, opts.Repo, branch); err != nil {
			return err
		}

		receipt = transaction.NewReceipt(transaction.ModeSource, opts.Repo, branch)
	}

	for _, tool := range foundryTools {
		receipt.AddTool(tool, filepath.Join(binDir, tool))
	}
	if err := receipt.Save(foundryDir); err != nil {
		ui.Warn("could not record install receipt: %v", err)
	}

	ui.Success("installed forge and cast into %s", binDir)

	return configurePath(binDir)
}

// configurePath puts binDir on PATH via the shell profile. An
// undetectable shell is a degraded success: the binaries are installed,
// so the user gets manual instructions along with the distinct exit
// code.
func configurePath(binDir string) error {
	manager, err := shell.NewManager(binDir)
	if err != nil {
		return err
	}

	result, err := manager.Configure(os.Getenv("SHELL"), os.Getenv("PATH"))
	if err != nil {
		if errkind.KindOf(err) == errkind.ShellUndetected {
			ui.Warn("forge and cast are installed, but your shell could not be detected")
			ui.Warn("add %s to PATH yourself, e.g.:", binDir)
			ui.Warn("  export PATH=\"$PATH:%s\"", binDir)
		}
		return err
	}

	switch {
	case result.AlreadyOnPath:
		ui.Detail("%s is already on PATH", binDir)
	case result.AlreadyInProfile:
		ui.Detail("%s is already configured in %s", binDir, result.Profile)
	case result.Added:
		ui.Success("added %s to PATH via %s", binDir, result.Profile)
		ui.Detail("restart your %s session or run: source %s", result.Shell, result.Profile)
	}

	ui.Success("foundry is ready: try forge --help or cast --help")
	return nil
}
