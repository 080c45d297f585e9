package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foundry-rs/foundryup/internal/errkind"
	"github.com/foundry-rs/foundryup/internal/platform"
	"github.com/foundry-rs/foundryup/internal/ui"
)

// Manager orchestrates archive download, verification, and installation
// for the binary-release path.
type Manager struct {
	host         string
	binDir       string
	tmpDir       string
	platformInfo *platform.Info
	tools        []string
	downloader   *Downloader
	verifier     *Verifier
	extractor    *Extractor
}

// Config holds configuration for the release manager.
type Config struct {
	// FoundryDir is the installation root (default: ~/.foundry).
	FoundryDir string
	// PlatformInfo contains OS and architecture information.
	PlatformInfo *platform.Info
	// Tools are the executable names to pull out of the archive.
	Tools []string
	// KeyringPath optionally points at a PGP keyring for signature
	// verification.
	KeyringPath string
	// Host overrides the release download host. Defaults to GitHub;
	// set for mirrors and tests.
	Host string
}

// NewManager creates a release manager.
func NewManager(config Config) (*Manager, error) {
	if config.FoundryDir == "" {
		return nil, fmt.Errorf("FoundryDir is required")
	}
	if config.PlatformInfo == nil {
		return nil, fmt.Errorf("PlatformInfo is required")
	}
	if len(config.Tools) == 0 {
		return nil, fmt.Errorf("Tools is required")
	}
	if config.Host == "" {
		config.Host = DefaultHost
	}

	return &Manager{
		host:         config.Host,
		binDir:       filepath.Join(config.FoundryDir, "bin"),
		tmpDir:       filepath.Join(config.FoundryDir, "tmp"),
		platformInfo: config.PlatformInfo,
		tools:        config.Tools,
		downloader:   NewDownloader(filepath.Join(config.FoundryDir, "cache", "downloads")),
		verifier:     NewVerifier(config.KeyringPath),
		extractor:    NewExtractor(),
	}, nil
}

// BinDir returns the directory the tools are installed into.
func (m *Manager) BinDir() string {
	return m.binDir
}

// Install downloads the release archive for the host platform, verifies
// it when the release publishes signatures or digests, and moves the
// tools into the bin directory.
//
// Extraction happens in a staging directory under tmp; the executables
// are renamed into bin one by one only after every tool extracted
// cleanly, so a failure at any step leaves previously installed
// binaries untouched.
func (m *Manager) Install(ctx context.Context, desc Descriptor) (*InstallResult, error) {
	start := time.Now()

	archive, err := archiveForHost(m.host, desc, m.platformInfo)
	if err != nil {
		return nil, err
	}

	ui.Detail("downloading %s", archive.URL)
	archivePath, err := m.downloader.FetchArchive(ctx, archive)
	if err != nil {
		return nil, err
	}

	verified, err := m.verify(ctx, archive, archivePath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(m.tmpDir, 0755); err != nil {
		return nil, errkind.Wrapf(errkind.Archive, err, "create tmp dir")
	}
	staging, err := os.MkdirTemp(m.tmpDir, "extract-*")
	if err != nil {
		return nil, errkind.Wrapf(errkind.Archive, err, "create staging dir")
	}
	defer os.RemoveAll(staging)

	if err := m.extractor.ExtractTools(archivePath, staging, m.tools); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(m.binDir, 0755); err != nil {
		return nil, errkind.Wrapf(errkind.Archive, err, "create bin dir")
	}

	// Staging lives on the same filesystem as bin, so each move is an
	// atomic rename that overwrites any prior version.
	for _, tool := range m.tools {
		src := filepath.Join(staging, tool)
		dst := filepath.Join(m.binDir, tool)
		if err := os.Rename(src, dst); err != nil {
			return nil, errkind.Wrapf(errkind.Archive, err, "install %s", tool)
		}
	}

	return &InstallResult{
		Archive:  archive,
		Tools:    m.tools,
		Verified: verified,
		Duration: time.Since(start),
	}, nil
}

// verify checks the downloaded archive against whatever verification
// material the release publishes: a detached PGP signature when a
// keyring is configured, else a SHA256 digest file. Releases that
// publish neither install unverified with a notice; a published
// artifact that fails its check is always fatal.
func (m *Manager) verify(ctx context.Context, archive *Archive, archivePath string) (string, error) {
	if m.verifier.CanVerifyPGP() {
		sigPath, err := m.downloader.FetchSignature(ctx, archive)
		if err == nil {
			if err := m.verifier.VerifyPGP(archivePath, sigPath); err != nil {
				return "", err
			}
			return "pgp", nil
		}
	}

	digestPath, err := m.downloader.FetchChecksum(ctx, archive)
	if err == nil {
		if err := m.verifier.VerifySHA256(archivePath, digestPath); err != nil {
			return "", err
		}
		return "sha256", nil
	}

	ui.Warn("release publishes no signature or checksum; installing unverified")
	return "", nil
}
