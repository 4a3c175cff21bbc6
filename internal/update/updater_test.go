package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckUpdateAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"version": "1.1.0",
			"download_url": "https://example.com/radiobrowse-1.1.0",
			"changelog": "Bug fixes",
			"size": 1024,
			"required": false
		}`)
	}))
	defer server.Close()

	u := New("1.0.0", server.URL)
	info, err := u.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if info == nil {
		t.Fatal("Check() = nil, want update info")
	}
	if info.Version != "1.1.0" {
		t.Errorf("Version = %q, want 1.1.0", info.Version)
	}
	if info.Changelog != "Bug fixes" {
		t.Errorf("Changelog = %q, want Bug fixes", info.Changelog)
	}
}

func TestCheckUpToDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version": "1.0.0", "download_url": "https://example.com/x"}`)
	}))
	defer server.Close()

	u := New("1.0.0", server.URL)
	info, err := u.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if info != nil {
		t.Errorf("Check() = %+v, want nil for current version", info)
	}
}

func TestCheckManifestErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	u := New("1.0.0", server.URL)
	if _, err := u.Check(context.Background()); err == nil {
		t.Error("Check() error = nil, want error for 500 response")
	}
}

func TestCheckInvalidManifest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	u := New("1.0.0", server.URL)
	if _, err := u.Check(context.Background()); err == nil {
		t.Error("Check() error = nil, want parse error")
	}
}

func TestCheckIncompleteManifest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version": "9.9.9"}`)
	}))
	defer server.Close()

	u := New("1.0.0", server.URL)
	if _, err := u.Check(context.Background()); err == nil {
		t.Error("Check() error = nil, want error for missing download URL")
	}
}

func TestDownloadVerifiesChecksum(t *testing.T) {
	payload := []byte(strings.Repeat("stream-bytes ", 1000))
	sum := sha256.Sum256(payload)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	info := &Info{
		Version:     "1.1.0",
		DownloadURL: server.URL + "/radiobrowse-1.1.0",
		Checksum:    hex.EncodeToString(sum[:]),
	}

	var reports int
	u := New("1.0.0", server.URL)
	dest, err := u.Download(context.Background(), info, t.TempDir(), func(p Progress) {
		reports++
		if p.Downloaded > p.Total && p.Total > 0 {
			t.Errorf("Downloaded %d exceeds Total %d", p.Downloaded, p.Total)
		}
	})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if filepath.Base(dest) != "radiobrowse-1.1.0" {
		t.Errorf("downloaded file = %q, want radiobrowse-1.1.0", filepath.Base(dest))
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if len(data) != len(payload) {
		t.Errorf("downloaded %d bytes, want %d", len(data), len(payload))
	}
	if reports == 0 {
		t.Error("progress callback never invoked")
	}
}

func TestDownloadChecksumMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("actual payload"))
	}))
	defer server.Close()

	info := &Info{
		Version:     "1.1.0",
		DownloadURL: server.URL + "/artifact",
		Checksum:    strings.Repeat("ab", 32),
	}

	dir := t.TempDir()
	u := New("1.0.0", server.URL)
	if _, err := u.Download(context.Background(), info, dir, nil); err == nil {
		t.Fatal("Download() error = nil, want checksum mismatch")
	}

	if _, err := os.Stat(filepath.Join(dir, "artifact")); !os.IsNotExist(err) {
		t.Error("corrupt download not removed")
	}
}

func TestDownloadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	info := &Info{Version: "1.1.0", DownloadURL: server.URL + "/missing"}
	u := New("1.0.0", server.URL)
	if _, err := u.Download(context.Background(), info, t.TempDir(), nil); err == nil {
		t.Error("Download() error = nil, want error for 404")
	}
}

func TestSwapReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "radiobrowse")
	source := filepath.Join(dir, "radiobrowse-new")

	if err := os.WriteFile(target, []byte("old binary"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(source, []byte("new binary"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := swap(target, source); err != nil {
		t.Fatalf("swap() error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new binary" {
		t.Errorf("target contents = %q, want new binary", data)
	}

	backup, err := os.ReadFile(target + ".old")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != "old binary" {
		t.Errorf("backup contents = %q, want old binary", backup)
	}

	fi, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm()&0111 == 0 {
		t.Error("installed binary is not executable")
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/releases/radiobrowse-1.1.0", "radiobrowse-1.1.0"},
		{"https://example.com/", "radiobrowse-update"},
		{"://bad", "radiobrowse-update"},
	}

	for _, tt := range tests {
		if got := artifactName(tt.url); got != tt.want {
			t.Errorf("artifactName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
