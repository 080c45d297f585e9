// Package release implements the binary-release install path: it
// resolves the download URL for the host platform, fetches the release
// archive, optionally verifies it, and installs the Foundry tools into
// the bin directory via a staging area so a failed extraction never
// leaves half-written executables behind.
package release

import "time"

// Descriptor identifies one release: the GitHub repository it is
// published under and its version tag. Immutable once resolved for a
// run.
type Descriptor struct {
	Repo    string // "owner/name"
	Version string // release tag, e.g. "nightly" or "v1.0.0"
}

// Archive contains everything needed to fetch one release archive.
type Archive struct {
	Descriptor
	PlatformTag string // "linux", "alpine", "darwin"
	ArchTag     string // "amd64", "arm64"
	Name        string // archive file name
	URL         string // archive download URL
	SignatureURL string // detached PGP signature (may not exist upstream)
	ChecksumURL  string // SHA256 digest file (may not exist upstream)
}

// InstallResult describes a completed binary-release install.
type InstallResult struct {
	Archive  *Archive
	Tools    []string // names of the installed executables
	Verified string   // "pgp", "sha256", or "" when nothing was published
	Duration time.Duration
}
