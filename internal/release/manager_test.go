package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foundry-rs/foundryup/internal/errkind"
	"github.com/foundry-rs/foundryup/internal/platform"
)

func linuxAMD64() *platform.Info {
	return &platform.Info{OS: "linux", Arch: platform.ArchAMD64}
}

// releaseServer serves a fake GitHub release: the archive plus an
// optional sha256 digest file; everything else is a 404.
func releaseServer(t *testing.T, archive []byte, withDigest bool) *httptest.Server {
	t.Helper()

	sum := sha256.Sum256(archive)
	digest := hex.EncodeToString(sum[:])

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ".tar.gz"):
			w.Write(archive)
		case withDigest && strings.HasSuffix(r.URL.Path, ".sha256"):
			w.Write([]byte(digest + "  " + strings.TrimSuffix(filepath.Base(r.URL.Path), ".sha256") + "\n"))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestManager(t *testing.T, host string) (*Manager, string) {
	t.Helper()
	foundryDir := t.TempDir()
	m, err := NewManager(Config{
		FoundryDir:   foundryDir,
		PlatformInfo: linuxAMD64(),
		Tools:        []string{"forge", "cast"},
		Host:         host,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Join(foundryDir, "tmp"), 0755); err != nil {
		t.Fatalf("create tmp dir: %v", err)
	}
	return m, foundryDir
}

func TestManagerInstall(t *testing.T) {
	archive := buildTarGz(t, map[string]string{
		"forge": "forge-v1",
		"cast":  "cast-v1",
	})
	server := releaseServer(t, archive, true)
	defer server.Close()

	m, foundryDir := newTestManager(t, server.URL)

	result, err := m.Install(context.Background(), Descriptor{Repo: "foundry-rs/foundry", Version: "nightly"})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	if result.Verified != "sha256" {
		t.Errorf("Install() verified = %q, want %q", result.Verified, "sha256")
	}

	for tool, content := range map[string]string{"forge": "forge-v1", "cast": "cast-v1"} {
		path := filepath.Join(foundryDir, "bin", tool)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read installed %s: %v", tool, err)
		}
		if string(data) != content {
			t.Errorf("installed %s = %q, want %q", tool, data, content)
		}
		info, _ := os.Stat(path)
		if info.Mode().Perm()&0111 == 0 {
			t.Errorf("installed %s is not executable", tool)
		}
	}

	// Staging directories are cleaned up.
	entries, err := os.ReadDir(filepath.Join(foundryDir, "tmp"))
	if err != nil {
		t.Fatalf("read tmp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("tmp dir contains %d entries after install, want 0", len(entries))
	}
}

func TestManagerInstallOverwritesPrevious(t *testing.T) {
	archive := buildTarGz(t, map[string]string{
		"forge": "forge-v2",
		"cast":  "cast-v2",
	})
	server := releaseServer(t, archive, false)
	defer server.Close()

	m, foundryDir := newTestManager(t, server.URL)

	binDir := filepath.Join(foundryDir, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "forge"), []byte("forge-v1"), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Install(context.Background(), Descriptor{Repo: "foundry-rs/foundry", Version: "nightly"}); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(binDir, "forge"))
	if string(data) != "forge-v2" {
		t.Errorf("installed forge = %q, want overwrite to %q", data, "forge-v2")
	}
}

func TestManagerInstallFetchFailureKeepsExistingBinaries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	m, foundryDir := newTestManager(t, server.URL)

	binDir := filepath.Join(foundryDir, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, tool := range []string{"forge", "cast"} {
		if err := os.WriteFile(filepath.Join(binDir, tool), []byte(tool+"-old"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	_, err := m.Install(context.Background(), Descriptor{Repo: "foundry-rs/foundry", Version: "nightly"})
	if err == nil {
		t.Fatal("Install() succeeded against 404 server, want error")
	}
	if errkind.KindOf(err) != errkind.Network {
		t.Errorf("Install() error kind = %v, want Network", errkind.KindOf(err))
	}

	// Previously installed binaries are untouched.
	for _, tool := range []string{"forge", "cast"} {
		data, err := os.ReadFile(filepath.Join(binDir, tool))
		if err != nil {
			t.Fatalf("read %s: %v", tool, err)
		}
		if string(data) != tool+"-old" {
			t.Errorf("%s = %q after failed install, want %q", tool, data, tool+"-old")
		}
	}
}

func TestManagerInstallBadArchiveKeepsExistingBinaries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".tar.gz") {
			w.Write([]byte("not a gzip stream"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	m, foundryDir := newTestManager(t, server.URL)

	binDir := filepath.Join(foundryDir, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "forge"), []byte("forge-old"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := m.Install(context.Background(), Descriptor{Repo: "foundry-rs/foundry", Version: "nightly"})
	if err == nil {
		t.Fatal("Install() succeeded on corrupt archive, want error")
	}
	if errkind.KindOf(err) != errkind.Archive {
		t.Errorf("Install() error kind = %v, want Archive", errkind.KindOf(err))
	}

	data, _ := os.ReadFile(filepath.Join(binDir, "forge"))
	if string(data) != "forge-old" {
		t.Errorf("forge = %q after failed install, want untouched %q", data, "forge-old")
	}
}

func TestManagerInstallChecksumMismatch(t *testing.T) {
	archive := buildTarGz(t, map[string]string{"forge": "forge", "cast": "cast"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ".tar.gz"):
			w.Write(archive)
		case strings.HasSuffix(r.URL.Path, ".sha256"):
			w.Write([]byte("0000000000000000000000000000000000000000000000000000000000000000\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	m, _ := newTestManager(t, server.URL)

	_, err := m.Install(context.Background(), Descriptor{Repo: "foundry-rs/foundry", Version: "nightly"})
	if err == nil {
		t.Fatal("Install() succeeded with mismatched checksum, want error")
	}
	if errkind.KindOf(err) != errkind.Archive {
		t.Errorf("Install() error kind = %v, want Archive", errkind.KindOf(err))
	}
}
