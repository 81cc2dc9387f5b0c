// package testing holds helpers shared by the package tests: writers and bodies that fail on demand,
// a canned HTTP transport, a fake Web API server (see spotify.go) and filesystem assertions.
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

var (
	errWrite = errors.New("write failed")
	errRead  = errors.New("read failed")
)

// BrokenWriter rejects every write.
type BrokenWriter struct{}

func (BrokenWriter) Write([]byte) (int, error) { return 0, errWrite }

// QuotaWriter forwards the first n writes to an underlying writer and rejects the rest.
type QuotaWriter struct {
	left int
	dst  io.Writer
}

func NewQuotaWriter(n int, dst io.Writer) *QuotaWriter {
	return &QuotaWriter{left: n, dst: dst}
}

func (q *QuotaWriter) Write(p []byte) (int, error) {
	if q.left <= 0 {
		return 0, errors.New("write limit exceeded")
	}
	q.left--
	return q.dst.Write(p)
}

// BrokenBody is a response body whose reads fail.
type BrokenBody struct{}

func (BrokenBody) Read([]byte) (int, error) { return 0, errRead }
func (BrokenBody) Close() error             { return nil }

// StaticTransport answers every request with the same response and error.
type StaticTransport struct {
	Response *http.Response
	Err      error
}

func (s StaticTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return s.Response, s.Err
}

// Client returns an [http.Client] that uses the transport.
func (s StaticTransport) Client() *http.Client {
	return &http.Client{Transport: s}
}

func stat(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
		return nil
	}
	return info
}

// AssertFileExists fails the test unless path is a regular file.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if info := stat(t, path); info != nil && !info.Mode().IsRegular() {
		t.Errorf("%s is not a regular file", path)
	}
}

// AssertDirExists fails the test unless path is a directory.
func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	if info := stat(t, path); info != nil && !info.IsDir() {
		t.Errorf("%s is not a directory", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read %s: %v", path, err)
	}
	return string(b)
}

// TempHome points HOME at a fresh temporary directory for the duration of the test and returns it.
func TempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// WriteFile writes content to name under dir, creating parents, and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("could not create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write %s: %v", path, err)
	}
	return path
}
