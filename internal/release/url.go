package release

import (
	"fmt"

	"github.com/foundry-rs/foundryup/internal/platform"
)

// DefaultHost is the release download host.
const DefaultHost = "https://github.com"

// ArchiveFor resolves the deterministic download URL for a release on
// the given platform.
//
// Archive naming follows the Foundry release convention:
//
//	https://github.com/{repo}/releases/download/{version}/foundry_{version}_{platform}_{arch}.tar.gz
func ArchiveFor(desc Descriptor, info *platform.Info) (*Archive, error) {
	return archiveForHost(DefaultHost, desc, info)
}

// archiveForHost is ArchiveFor against an explicit host, used for
// mirrors and tests.
func archiveForHost(host string, desc Descriptor, info *platform.Info) (*Archive, error) {
	if info == nil {
		return nil, fmt.Errorf("platform info is required")
	}

	platformTag, err := info.ReleaseTag()
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("foundry_%s_%s_%s.tar.gz", desc.Version, platformTag, info.Arch)
	url := fmt.Sprintf("%s/%s/releases/download/%s/%s", host, desc.Repo, desc.Version, name)

	return &Archive{
		Descriptor:   desc,
		PlatformTag:  platformTag,
		ArchTag:      info.Arch,
		Name:         name,
		URL:          url,
		SignatureURL: url + ".asc",
		ChecksumURL:  url + ".sha256",
	}, nil
}
