// Package platform detects the host OS and CPU architecture and maps
// them to the tags used in Foundry release archive names.
//
// OS and architecture come from the Go runtime. On Linux, gopsutil
// supplies distribution details so musl-based hosts (Alpine family) can
// be routed to the dedicated alpine builds; distro detection failures
// fall back to plain OS/arch. On macOS, a Rosetta 2 probe prevents a
// translated process from reporting amd64 on Apple Silicon hardware.
package platform

import "context"

// Release archive platform tags. These are the only operating systems
// with prebuilt Foundry binaries.
const (
	TagLinux  = "linux"
	TagAlpine = "alpine"
	TagDarwin = "darwin"
)

// Release archive architecture tags.
const (
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

// Linux distribution family constants, used to pick musl builds.
const (
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// Info contains platform detection results.
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // normalized tag: "amd64" or "arm64"
	ArchRaw  string // original GOARCH value
	Family   string // Linux distro family ("alpine", "unknown", ...; empty off Linux)
	Rosetta  bool   // process is running under Rosetta 2 translation
	Platform string // distro ID (Linux only, e.g. "ubuntu")
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsMusl returns true if the host uses musl libc (Alpine family).
func (i *Info) IsMusl() bool {
	return i.OS == "linux" && i.Family == FamilyAlpine
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// TranslationProbe reports whether the current process runs under a
// binary translation layer (Rosetta 2). Probe failures mean "not
// translated", never an error: the underlying sysctl property simply
// does not exist on most hosts.
type TranslationProbe func(ctx context.Context) bool
