// Package testutil provides helpers for running the action in isolation.
package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"sort"
	"testing"
)

// SetupTestEnv isolates a test from the runner it executes on: tokens and
// GitHub Actions markers are cleared and RUNNER_TEMP points at a fresh
// directory, which is returned.
//
// The environment is restored by the testing framework.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("RUNNER_TEMP", tmpDir)

	for _, key := range []string{
		"GITHUB_ACTIONS",
		"GITHUB_TOKEN",
		"VOORHEES_GITHUB_TOKEN",
		"RUNNER_DEBUG",
	} {
		t.Setenv(key, "")
	}

	return tmpDir
}

// Env returns an environment lookup backed by m. A nil map is empty.
func Env(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

// TarGz builds a gzipped tarball holding files. Entries are written in name
// order with the given mode.
func TarGz(t *testing.T, files map[string]string, mode int64) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range names {
		content := files[name]
		header := &tar.Header{
			Name:     name,
			Mode:     mode,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write content for %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}
