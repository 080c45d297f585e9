package platform

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/foundry-rs/foundryup/internal/errkind"
)

// RealDetector implements Detector using actual host inspection.
type RealDetector struct {
	goos  string
	arch  string
	probe TranslationProbe
}

// NewDetector creates a platform detector for the current host.
func NewDetector() Detector {
	return &RealDetector{
		goos:  runtime.GOOS,
		arch:  runtime.GOARCH,
		probe: sysctlTranslationProbe,
	}
}

// NewDetectorFor creates a detector with explicit OS, architecture, and
// translation probe. Used by tests to simulate foreign hosts.
func NewDetectorFor(goos, arch string, probe TranslationProbe) Detector {
	if probe == nil {
		probe = func(context.Context) bool { return false }
	}
	return &RealDetector{goos: goos, arch: arch, probe: probe}
}

// Detect inspects the host and returns platform information.
//
// The Rosetta probe only runs when the raw architecture would resolve to
// amd64 on macOS: that is the one case where the runtime lies about the
// hardware. Linux distribution lookup failures degrade to OS/arch-only
// results rather than aborting the install.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      d.goos,
		ArchRaw: d.arch,
	}

	if d.goos == "darwin" && normalizeArch(d.arch, false) == ArchAMD64 {
		info.Rosetta = d.probe(ctx)
	}
	info.Arch = normalizeArch(d.arch, info.Rosetta)

	if d.goos == "linux" {
		plat, family, _, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errkind.Wrapf(errkind.Unknown, ctx.Err(), "platform detection cancelled")
			}
			// Distro lookup is best-effort; glibc builds work on any
			// distro we can't identify.
			info.Family = FamilyUnknown
			return info, nil
		}

		info.Platform = normalizeID(plat)
		info.Family = mapFamily(family)
		if info.Family == FamilyUnknown {
			// Some hosts report the family only through the distro ID.
			info.Family = mapFamily(plat)
		}
	}

	return info, nil
}
