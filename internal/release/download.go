package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/foundry-rs/foundryup/internal/errkind"
	"github.com/foundry-rs/foundryup/internal/ui"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the number of download retries per fetch.
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "foundryup/1.0"
)

// Downloader fetches release assets over HTTPS with retry logic and
// atomic writes into a per-version cache directory.
type Downloader struct {
	client    *http.Client
	cacheDir  string
	userAgent string
	retries   int
}

// NewDownloader creates a downloader caching into cacheDir.
func NewDownloader(cacheDir string) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		cacheDir:  cacheDir,
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
	}
}

// FetchArchive downloads the release archive into the cache and returns
// its local path. Failures are fatal NetworkErrors; nothing outside the
// cache is touched.
func (d *Downloader) FetchArchive(ctx context.Context, archive *Archive) (string, error) {
	path, err := d.fetchCached(ctx, archive, archive.URL, true)
	if err != nil {
		return "", errkind.Wrapf(errkind.Network, err, "fetch %s", archive.URL)
	}
	return path, nil
}

// FetchSignature downloads the detached signature for an archive.
// Upstream may not publish one; callers decide whether that is fatal.
func (d *Downloader) FetchSignature(ctx context.Context, archive *Archive) (string, error) {
	return d.fetchCached(ctx, archive, archive.SignatureURL, false)
}

// FetchChecksum downloads the SHA256 digest file for an archive.
func (d *Downloader) FetchChecksum(ctx context.Context, archive *Archive) (string, error) {
	return d.fetchCached(ctx, archive, archive.ChecksumURL, false)
}

// fetchCached downloads url into the cache keyed by version, reusing a
// previous download when present.
func (d *Downloader) fetchCached(ctx context.Context, archive *Archive, url string, progress bool) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no URL available")
	}

	cachePath := filepath.Join(d.cacheDir, archive.Version, filepath.Base(url))
	if fileExists(cachePath) {
		return cachePath, nil
	}

	if err := d.fetchToFile(ctx, url, cachePath, progress); err != nil {
		return "", err
	}
	return cachePath, nil
}

// fetchToFile downloads a URL to destPath with retries. The body lands
// in a temporary sibling first and is renamed into place only after a
// complete read, so an interrupted transfer never leaves a truncated
// file in the cache.
func (d *Downloader) fetchToFile(ctx context.Context, url, destPath string, progress bool) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s.
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.fetchOnce(ctx, url, destPath, progress)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isPermanent(err) {
			return err
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", d.retries, lastErr)
}

// statusError reports a non-2xx HTTP response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

// isPermanent reports whether retrying cannot help (4xx responses).
func isPermanent(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 400 && se.code < 500
	}
	return false
}

func (d *Downloader) fetchOnce(ctx context.Context, url, destPath string, progress bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	body := io.Reader(resp.Body)
	if progress {
		wrapped, finish := ui.Progress(resp.Body, resp.ContentLength)
		defer finish()
		body = wrapped
	}

	if _, err := io.Copy(tmpFile, body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// fileExists checks if a file exists and is not empty.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
