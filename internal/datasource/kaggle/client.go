// Package kaggle downloads dataset archives from the Kaggle public API and
// extracts their CSV files into a local cache directory, so the rest of the
// pipeline can treat a remote dataset like any other directory of CSVs.
//
// A dataset is addressed by "owner/slug". Downloads authenticate with HTTP
// basic auth when credentials are available; an anonymous attempt is made
// otherwise, and a 401/403 surfaces as *AuthError so the caller can tell
// "configure credentials" apart from a transport failure.
package kaggle

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamedata/internal/datasource/httpds"
)

const defaultBaseURL = "https://www.kaggle.com/api/v1"

// AuthError reports a download rejected for missing or invalid credentials.
type AuthError struct {
	Ref    string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf(
		"kaggle: dataset %q requires valid credentials (status %d); set KAGGLE_USERNAME and KAGGLE_KEY or create ~/.kaggle/kaggle.json",
		e.Ref, e.Status,
	)
}

// DownloadError reports a transport, server, or extraction failure while
// fetching a dataset.
type DownloadError struct {
	Ref string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("kaggle: download %s: %v", e.Ref, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Config configures a Client.
type Config struct {
	// CacheDir is where archives are extracted, one subdirectory per
	// dataset. Defaults to <user cache dir>/gamedata/kaggle.
	CacheDir string

	// Credentials for the API. The zero value attempts anonymous downloads.
	Credentials Credentials

	// BaseURL overrides the API endpoint. Tests point it at a local server.
	BaseURL string

	// HTTP tunes retry/backoff of the underlying client. Credentials and a
	// download-sized default timeout are applied on top of it.
	HTTP httpds.Config
}

// Client downloads and caches Kaggle datasets.
type Client struct {
	http    *httpds.Client
	baseURL string
	cache   string
}

// NewClient constructs a Client, resolving the default cache directory when
// none is configured.
func NewClient(cfg Config) (*Client, error) {
	cache := cfg.CacheDir
	if cache == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("kaggle: resolve cache dir: %w", err)
		}
		cache = filepath.Join(base, "gamedata", "kaggle")
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	hc := cfg.HTTP
	hc.Username = cfg.Credentials.Username
	hc.Password = cfg.Credentials.Key
	if hc.Timeout <= 0 {
		// Archives can be large; the per-request default in httpds is tuned
		// for API calls, not downloads.
		hc.Timeout = 5 * time.Minute
	}

	return &Client{
		http:    httpds.NewClient(hc),
		baseURL: strings.TrimRight(base, "/"),
		cache:   cache,
	}, nil
}

// ParseRef splits a dataset reference of the form "owner/slug".
func ParseRef(ref string) (owner, slug string, err error) {
	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("kaggle: dataset ref %q must look like owner/slug", ref)
	}
	return parts[0], parts[1], nil
}

// Download fetches the dataset archive for ref and extracts its CSV files,
// returning the directory they were extracted into. A previous extraction of
// the same ref is reused without contacting the server.
func (c *Client) Download(ctx context.Context, ref string) (string, error) {
	owner, slug, err := ParseRef(ref)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(c.cache, httpds.SafeName(ref))
	if hasFiles(dest) {
		log.Printf("kaggle: using cached copy of %s at %s", ref, dest)
		return dest, nil
	}

	if err := os.MkdirAll(c.cache, 0o755); err != nil {
		return "", &DownloadError{Ref: ref, Err: err}
	}

	url := fmt.Sprintf("%s/datasets/download/%s/%s", c.baseURL, owner, slug)
	resp, err := c.http.Get(ctx, url, nil)
	if err != nil {
		return "", &DownloadError{Ref: ref, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 200:
		// proceed
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return "", &AuthError{Ref: ref, Status: resp.StatusCode}
	default:
		return "", &DownloadError{Ref: ref, Err: fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)}
	}

	archive, err := os.CreateTemp(c.cache, slug+"-*.zip")
	if err != nil {
		return "", &DownloadError{Ref: ref, Err: err}
	}
	defer os.Remove(archive.Name())

	if _, err := io.Copy(archive, resp.Body); err != nil {
		archive.Close()
		return "", &DownloadError{Ref: ref, Err: err}
	}
	if err := archive.Close(); err != nil {
		return "", &DownloadError{Ref: ref, Err: err}
	}

	// Extract next to the final location, then rename, so a partially
	// extracted directory is never mistaken for a cache hit.
	partial := dest + ".partial"
	if err := os.RemoveAll(partial); err != nil {
		return "", &DownloadError{Ref: ref, Err: err}
	}
	n, err := extractCSV(archive.Name(), partial)
	if err != nil {
		os.RemoveAll(partial)
		return "", &DownloadError{Ref: ref, Err: err}
	}
	if err := os.RemoveAll(dest); err != nil {
		return "", &DownloadError{Ref: ref, Err: err}
	}
	if err := os.Rename(partial, dest); err != nil {
		return "", &DownloadError{Ref: ref, Err: err}
	}

	log.Printf("kaggle: downloaded %s: %d csv file(s) into %s", ref, n, dest)
	return dest, nil
}

// hasFiles reports whether dir exists and contains at least one regular
// entry, i.e. looks like a completed extraction.
func hasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			return true
		}
	}
	return false
}

// extractCSV writes every .csv member of the archive into destDir, flattened
// to its base name. Flattening keeps the result discoverable by a plain
// directory scan and makes path traversal via crafted member names a
// non-issue. Name collisions across archive subdirectories fall back to a
// name derived from the full member path.
func extractCSV(zipPath, destDir string) (int, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	n := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}

		name := filepath.Base(f.Name)
		if name == "." || name == ".." {
			continue
		}
		if seen[name] {
			name = httpds.SafeName(strings.TrimSuffix(f.Name, filepath.Ext(f.Name))) + ".csv"
		}
		seen[name] = true

		if err := writeMember(f, filepath.Join(destDir, name)); err != nil {
			return n, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		n++
	}
	return n, nil
}

func writeMember(f *zip.File, path string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, rc); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
