// Package updater checks GitHub Releases for a newer storybook and
// replaces the running binary with it.
//
// Release assets follow GoReleaser's default naming:
// storybook_<version>_<os>_<arch>.tar.gz, or .zip on Windows.
package updater

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// Repo is the GitHub repository releases are published to.
	Repo = "HendryAvila/storybook"
	// Binary is the executable name inside release archives.
	Binary = "storybook"

	checkTimeout = 10 * time.Second
	maxArchive   = 200 << 20
)

// ErrUpToDate is returned by Update when no newer release exists.
var ErrUpToDate = errors.New("already at the latest version")

// Release is the part of a GitHub release we read.
type Release struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file of a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Check is the outcome of comparing the running version with the latest
// release.
type Check struct {
	Current         string `json:"current"`
	Latest          string `json:"latest,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
	ReleaseURL      string `json:"release_url,omitempty"`
}

// Updater talks to the releases API. The zero value is not usable; call New.
type Updater struct {
	Endpoint string
	Client   *http.Client
	GOOS     string
	GOARCH   string
}

// New returns an Updater for the public storybook releases.
func New() *Updater {
	return &Updater{
		Endpoint: "https://api.github.com/repos/" + Repo + "/releases/latest",
		Client:   &http.Client{Timeout: checkTimeout},
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
	}
}

func (u *Updater) latest(ctx context.Context, current string) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", Binary+"/"+current)

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}
	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &rel, nil
}

// Check compares current with the latest release. Network and API
// failures are returned; callers doing a background check may ignore them.
func (u *Updater) Check(ctx context.Context, current string) (Check, error) {
	res := Check{Current: normalizeVersion(current)}
	rel, err := u.latest(ctx, current)
	if err != nil {
		return res, err
	}
	res.Latest = normalizeVersion(rel.TagName)
	res.ReleaseURL = rel.HTMLURL
	res.UpdateAvailable = isNewer(res.Current, res.Latest)
	return res, nil
}

// Update downloads the release asset for this platform and renames it over
// execPath. It returns the installed version.
func (u *Updater) Update(ctx context.Context, current, execPath string) (string, error) {
	rel, err := u.latest(ctx, current)
	if err != nil {
		return "", err
	}
	latest := normalizeVersion(rel.TagName)
	if !isNewer(normalizeVersion(current), latest) {
		return "", fmt.Errorf("%w (%s)", ErrUpToDate, normalizeVersion(current))
	}

	name := u.assetName(latest)
	var url string
	for _, a := range rel.Assets {
		if a.Name == name {
			url = a.BrowserDownloadURL
			break
		}
	}
	if url == "" {
		return "", fmt.Errorf("no release asset for %s/%s (looking for %s)", u.GOOS, u.GOARCH, name)
	}

	archive, err := u.download(ctx, url)
	if err != nil {
		return "", err
	}
	bin, err := extractBinary(archive, name)
	if err != nil {
		return "", fmt.Errorf("extracting binary: %w", err)
	}
	if err := replaceExecutable(execPath, bin, u.GOOS == "windows"); err != nil {
		return "", err
	}
	return latest, nil
}

func (u *Updater) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	// Downloads may outlast the API timeout.
	client := *u.Client
	client.Timeout = 0
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchive))
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	return data, nil
}

func replaceExecutable(execPath string, bin []byte, windows bool) error {
	execPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable: %w", err)
	}
	tmp := execPath + ".new"
	if err := os.WriteFile(tmp, bin, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}
	// A running binary cannot be overwritten on Windows, only renamed.
	if windows {
		old := execPath + ".old"
		_ = os.Remove(old)
		if err := os.Rename(execPath, old); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("backing up current binary: %w", err)
		}
	}
	if err := os.Rename(tmp, execPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

func (u *Updater) assetName(version string) string {
	ext := "tar.gz"
	if u.GOOS == "windows" {
		ext = "zip"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", Binary, version, u.GOOS, u.GOARCH, ext)
}

// ─── Archives ───────────────────────────────────────────────────────────────

func isBinary(name string) bool {
	base := filepath.Base(name)
	return base == Binary || base == Binary+".exe"
}

func extractBinary(archive []byte, assetName string) ([]byte, error) {
	if strings.HasSuffix(assetName, ".zip") {
		return extractFromZip(archive)
	}
	return extractFromTarGz(archive)
}

func extractFromTarGz(archive []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if isBinary(hdr.Name) {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("%s binary not found in archive", Binary)
}

func extractFromZip(archive []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	for _, f := range zr.File {
		if !isBinary(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s binary not found in archive", Binary)
}

// ─── Versions ───────────────────────────────────────────────────────────────

func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer compares dotted numeric versions. A "dev" build never updates.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}
	cur := versionParts(current)
	lat := versionParts(latest)
	for i := range cur {
		if lat[i] != cur[i] {
			return lat[i] > cur[i]
		}
	}
	return false
}

func versionParts(v string) [3]int {
	var out [3]int
	for i, part := range strings.SplitN(v, ".", 3) {
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				break
			}
			out[i] = out[i]*10 + int(ch-'0')
		}
	}
	return out
}
