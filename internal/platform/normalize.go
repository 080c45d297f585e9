package platform

import (
	"strings"

	"github.com/foundry-rs/foundryup/internal/errkind"
)

// familyMap maps distribution identifiers to canonical family names.
// Only the Alpine family changes installer behavior (musl builds); the
// rest normalize to FamilyUnknown.
var familyMap = map[string]string{
	"alpine":     FamilyAlpine,
	"postmarket": FamilyAlpine, // postmarketOS is Alpine-based
}

// normalizeArch maps a raw architecture string to a release tag.
//
// ARM hosts report a handful of spellings; everything else downloads the
// amd64 build. rosetta overrides the amd64 result when the process runs
// translated on Apple Silicon.
func normalizeArch(raw string, rosetta bool) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "arm64", "aarch64":
		return ArchARM64
	}
	if rosetta {
		return ArchARM64
	}
	return ArchAMD64
}

// normalizeID lowercases and trims a distro identifier for consistency.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// mapFamily maps a distribution family or ID to a canonical family name.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}

// ReleaseTag returns the platform tag encoded in release archive names.
// Operating systems outside the enumerated set have no prebuilt
// binaries, which is a fatal condition for the binary-release path.
func (i *Info) ReleaseTag() (string, error) {
	switch i.OS {
	case "linux":
		if i.Family == FamilyAlpine {
			return TagAlpine, nil
		}
		return TagLinux, nil
	case "darwin":
		return TagDarwin, nil
	default:
		return "", errkind.New(errkind.PlatformUnsupported,
			"unsupported operating system: %s (prebuilt binaries exist for linux, alpine, and darwin)", i.OS)
	}
}
