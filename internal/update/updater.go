// Package update implements the self-update client: manifest check,
// artifact download with checksum verification, and executable swap.
package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"radiobrowse/internal/version"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	checkTimeout = 10 * time.Second
	userAgent    = "RadioBrowse/1.0"

	downloadChunkSize = 32 * 1024
	progressInterval  = 500 * time.Millisecond
)

// Info describes an available release, as published in the update manifest.
type Info struct {
	Version     string `json:"version"`
	DownloadURL string `json:"download_url"`
	Changelog   string `json:"changelog"`
	Size        int64  `json:"size"`
	Checksum    string `json:"checksum"` // hex-encoded SHA-256, optional
	Required    bool   `json:"required"`
}

// Progress reports download state to the caller.
type Progress struct {
	Percent    float64
	Downloaded int64
	Total      int64
	Speed      float64 // bytes per second
}

type ProgressFunc func(Progress)

// Updater checks a JSON manifest for releases newer than the running build.
type Updater struct {
	current     string
	manifestURL string
	client      *resty.Client
	downloader  *http.Client
}

func New(currentVersion, manifestURL string) *Updater {
	return &Updater{
		current:     currentVersion,
		manifestURL: manifestURL,
		client: resty.New().
			SetTimeout(checkTimeout).
			SetHeader("User-Agent", userAgent),
		// Downloads stream and may be large; only the dial is bounded.
		downloader: &http.Client{},
	}
}

// Check fetches the manifest and returns the release info when it is newer
// than the running version, or nil when already up to date.
func (u *Updater) Check(ctx context.Context) (*Info, error) {
	resp, err := u.client.R().
		SetContext(ctx).
		Get(u.manifestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch update manifest: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("update manifest returned status %d: %s", resp.StatusCode(), resp.Status())
	}

	var info Info
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return nil, fmt.Errorf("failed to parse update manifest: %w", err)
	}

	if info.Version == "" || info.DownloadURL == "" {
		return nil, fmt.Errorf("update manifest is missing version or download URL")
	}

	if !version.IsNewer(u.current, info.Version) {
		log.Debug().Str("current", u.current).Str("latest", info.Version).Msg("No update available")
		return nil, nil
	}

	log.Debug().Str("current", u.current).Str("latest", info.Version).Msg("Update available")
	return &info, nil
}

// Download streams the release artifact into destDir, reporting progress
// along the way and verifying the manifest checksum when one is present.
// It returns the path of the downloaded file.
func (u *Updater) Download(ctx context.Context, info *Info, destDir string, onProgress ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.DownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.downloader.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d: %s", resp.StatusCode, resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = info.Size
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	dest := filepath.Join(destDir, artifactName(info.DownloadURL))
	file, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}

	hasher := sha256.New()
	writer := io.MultiWriter(file, hasher)

	var downloaded int64
	start := time.Now()
	lastReport := start
	buf := make([]byte, downloadChunkSize)

	report := func(now time.Time) {
		if onProgress == nil {
			return
		}
		p := Progress{Downloaded: downloaded, Total: total}
		if total > 0 {
			p.Percent = float64(downloaded) / float64(total) * 100
		}
		if elapsed := now.Sub(start).Seconds(); elapsed > 0 {
			p.Speed = float64(downloaded) / elapsed
		}
		onProgress(p)
	}

	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := writer.Write(buf[:n]); werr != nil {
				file.Close()
				os.Remove(dest)
				return "", fmt.Errorf("failed to write download: %w", werr)
			}
			downloaded += int64(n)

			if now := time.Now(); now.Sub(lastReport) >= progressInterval {
				lastReport = now
				report(now)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			file.Close()
			os.Remove(dest)
			return "", fmt.Errorf("download interrupted: %w", rerr)
		}
	}

	if err := file.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to close download file: %w", err)
	}
	report(time.Now())

	if info.Checksum != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, info.Checksum) {
			os.Remove(dest)
			return "", fmt.Errorf("checksum mismatch: got %s, want %s", got, info.Checksum)
		}
	}

	log.Debug().Str("file", dest).Int64("bytes", downloaded).Msg("Update downloaded")
	return dest, nil
}

// Apply swaps the running executable for the downloaded artifact.
func (u *Updater) Apply(downloadedPath string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate running executable: %w", err)
	}
	return swap(exe, downloadedPath)
}

// swap replaces target with source, keeping the previous binary as
// target.old so a broken update can be rolled back by hand.
func swap(target, source string) error {
	backup := target + ".old"
	os.Remove(backup)

	if err := os.Rename(target, backup); err != nil {
		return fmt.Errorf("failed to back up current executable: %w", err)
	}

	if err := os.Rename(source, target); err == nil {
		return os.Chmod(target, 0755)
	}

	// Rename across filesystems fails; fall back to a copy.
	if err := copyFile(source, target); err != nil {
		// Restore the backup so the installation is never left without a binary.
		if rerr := os.Rename(backup, target); rerr != nil {
			return fmt.Errorf("update failed and rollback failed: %v (rollback: %v)", err, rerr)
		}
		return fmt.Errorf("failed to install update: %w", err)
	}

	return os.Chmod(target, 0755)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// artifactName derives a local filename from the download URL.
func artifactName(downloadURL string) string {
	if u, err := url.Parse(downloadURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "radiobrowse-update"
}
