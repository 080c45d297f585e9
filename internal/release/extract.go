package release

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/foundry-rs/foundryup/internal/errkind"
)

// Extractor pulls named executables out of gzip-compressed tar archives.
type Extractor struct{}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractTools extracts each named tool from the archive into destDir,
// writing every file with executable permissions. All requested tools
// must be present; a missing entry fails the whole extraction.
//
// destDir should be a staging directory: the caller moves the results
// into the bin directory only after this returns successfully.
func (e *Extractor) ExtractTools(archivePath, destDir string, tools []string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return errkind.Wrapf(errkind.Archive, err, "open archive")
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return errkind.Wrapf(errkind.Archive, err, "create gzip reader")
	}
	defer gzipReader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errkind.Wrapf(errkind.Archive, err, "create staging dir")
	}

	wanted := make(map[string]bool, len(tools))
	for _, tool := range tools {
		wanted[tool] = true
	}

	tarReader := tar.NewReader(gzipReader)
	found := 0

	for found < len(tools) {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errkind.Wrapf(errkind.Archive, err, "read tar header")
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(header.Name)
		if !wanted[name] {
			continue
		}

		if err := writeExecutable(filepath.Join(destDir, name), tarReader); err != nil {
			return errkind.Wrapf(errkind.Archive, err, "extract %s", name)
		}
		wanted[name] = false
		found++
	}

	if found < len(tools) {
		var missing []string
		for tool, still := range wanted {
			if still {
				missing = append(missing, tool)
			}
		}
		return errkind.New(errkind.Archive, "archive is missing expected binaries: %v", missing)
	}

	return nil
}

// writeExecutable streams a tar entry to disk with 0755 permissions.
func writeExecutable(path string, r io.Reader) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write file: %w", err)
	}

	return out.Close()
}
