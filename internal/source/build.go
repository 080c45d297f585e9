package source

import (
	"context"
	"os"
	"os/exec"

	"github.com/foundry-rs/foundryup/internal/errkind"
)

// Builder runs the build-and-install step of the source path.
type Builder interface {
	// BuildAndInstall compiles the tools from checkoutDir and installs
	// them under rootDir/bin, overwriting previous versions.
	BuildAndInstall(ctx context.Context, checkoutDir, rootDir string) error
}

// CargoBuilder builds with the Rust toolchain.
type CargoBuilder struct {
	cargoPath string
}

// FindCargo locates cargo on PATH. Its absence is fatal: the source
// path cannot proceed without the build toolchain.
func FindCargo() (*CargoBuilder, error) {
	path, err := exec.LookPath("cargo")
	if err != nil {
		return nil, errkind.New(errkind.ToolchainMissing,
			"cargo is not installed. Please install it first: https://rustup.rs")
	}
	return &CargoBuilder{cargoPath: path}, nil
}

// NewCargoBuilder creates a builder with an explicit cargo path. Used
// by tests.
func NewCargoBuilder(cargoPath string) *CargoBuilder {
	return &CargoBuilder{cargoPath: cargoPath}
}

// BuildAndInstall runs cargo install from the cli subdirectory of the
// checkout, with locked dependency resolution, forcing overwrite of any
// previously installed binaries. cargo places the executables in
// rootDir/bin. Build output streams through so failures surface
// verbatim.
func (b *CargoBuilder) BuildAndInstall(ctx context.Context, checkoutDir, rootDir string) error {
	cmd := exec.CommandContext(ctx, b.cargoPath,
		"install",
		"--path", "./cli",
		"--bins",
		"--locked",
		"--force",
		"--root", rootDir,
	)
	cmd.Dir = checkoutDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errkind.Wrapf(errkind.Build, err, "cargo install in %s", checkoutDir)
	}
	return nil
}
