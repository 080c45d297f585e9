package release

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork

	"github.com/foundry-rs/foundryup/internal/errkind"
)

// EnvKeyring names the environment variable pointing at an armored PGP
// keyring used to verify detached release signatures.
const EnvKeyring = "FOUNDRYUP_KEYRING"

// Verifier checks downloaded archives against detached PGP signatures
// or SHA256 digest files, whichever the release publishes.
type Verifier struct {
	keyringPath string
}

// NewVerifier creates a verifier. keyringPath may be empty, in which
// case PGP verification is unavailable and only digests are checked.
func NewVerifier(keyringPath string) *Verifier {
	return &Verifier{keyringPath: keyringPath}
}

// CanVerifyPGP reports whether a keyring is configured.
func (v *Verifier) CanVerifyPGP() bool {
	return v.keyringPath != ""
}

// VerifyPGP checks archivePath against a detached signature using the
// configured keyring. Both armored and binary signatures are accepted.
func (v *Verifier) VerifyPGP(archivePath, signaturePath string) error {
	if v.keyringPath == "" {
		return errkind.New(errkind.Archive, "no keyring configured (set %s)", EnvKeyring)
	}

	keyring, err := loadKeyring(v.keyringPath)
	if err != nil {
		return errkind.Wrapf(errkind.Archive, err, "load keyring")
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return errkind.Wrapf(errkind.Archive, err, "open archive")
	}
	defer archive.Close()

	sig, err := os.Open(signaturePath)
	if err != nil {
		return errkind.Wrapf(errkind.Archive, err, "open signature")
	}
	defer sig.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, archive, sig, nil)
	if err != nil {
		archive.Seek(0, io.SeekStart)
		sig.Seek(0, io.SeekStart)
		_, err = openpgp.CheckDetachedSignature(keyring, archive, sig, nil)
	}
	if err != nil {
		return errkind.Wrapf(errkind.Archive, err, "verify signature")
	}
	return nil
}

// VerifySHA256 checks archivePath against a digest file. The file may
// contain either a bare hex digest or sha256sum-style "digest  name"
// lines; in the latter case the line matching the archive name wins.
func (v *Verifier) VerifySHA256(archivePath, digestPath string) error {
	want, err := expectedDigest(digestPath, filepath.Base(archivePath))
	if err != nil {
		return errkind.Wrapf(errkind.Archive, err, "read digest file")
	}

	got, err := fileSHA256(archivePath)
	if err != nil {
		return errkind.Wrapf(errkind.Archive, err, "hash archive")
	}

	if !strings.EqualFold(got, want) {
		return errkind.New(errkind.Archive,
			"checksum mismatch for %s: got %s, want %s", filepath.Base(archivePath), got, want)
	}
	return nil
}

// loadKeyring reads an armored or binary PGP keyring from disk.
func loadKeyring(path string) (openpgp.EntityList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return nil, serr
		}
		keyring, err = openpgp.ReadKeyRing(f)
	}
	return keyring, err
}

// expectedDigest extracts the hex digest for name from a digest file.
func expectedDigest(digestPath, name string) (string, error) {
	f, err := os.Open(digestPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var bare string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 1 && bare == "":
			bare = fields[0]
		case len(fields) >= 2 && strings.TrimPrefix(fields[len(fields)-1], "*") == name:
			return fields[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	if bare != "" {
		return bare, nil
	}
	return "", fmt.Errorf("no digest for %s", name)
}

// fileSHA256 computes the hex-encoded SHA256 digest of a file.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
