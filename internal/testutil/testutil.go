// Package testutil provides helper functions for testing.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"sort"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// ZipArchive builds an in-memory zip payload from path -> content pairs.
// Paths are slash-separated and should include the snapshot's top-level
// directory (for example "timer-main/main.py").
func ZipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, path := range sortedPaths(files) {
		f, err := w.Create(path)
		if err != nil {
			t.Fatalf("creating zip member %s: %v", path, err)
		}
		if _, err := f.Write([]byte(files[path])); err != nil {
			t.Fatalf("writing zip member %s: %v", path, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// TarGzArchive builds an in-memory gzip-compressed tar payload from
// path -> content pairs.
func TarGzArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	writeTar(t, gz, files)
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	return buf.Bytes()
}

// TarZstArchive builds an in-memory zstd-compressed tar payload from
// path -> content pairs.
func TarZstArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("creating zstd writer: %v", err)
	}
	writeTar(t, zw, files)
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zstd: %v", err)
	}
	return buf.Bytes()
}

// writeTar writes the files as a tar stream in deterministic order.
func writeTar(t *testing.T, dst io.Writer, files map[string]string) {
	t.Helper()

	tw := tar.NewWriter(dst)
	for _, path := range sortedPaths(files) {
		content := []byte(files[path])
		header := &tar.Header{
			Name:     path,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("writing tar header %s: %v", path, err)
		}
		if _, err := tw.Write(content); err != nil {
			t.Fatalf("writing tar member %s: %v", path, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
}

// sortedPaths returns the map's keys in lexicographic order so archive
// bytes are deterministic across runs.
func sortedPaths(files map[string]string) []string {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
