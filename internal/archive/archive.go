// Package archive inspects fetched archive payloads and classifies the
// application they contain.
//
// The inspector operates purely on the in-memory payload: it never touches
// the filesystem or the network. Supported containers are zip, gzip-compressed
// tar, and zstd-compressed tar, detected by magic bytes rather than by the
// name the payload was requested under.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/layout"
)

// Conventions are the structural expectations for a fetched snapshot. All
// three values come from configuration; RootDir is already expanded for the
// application being inspected.
type Conventions struct {
	// RootDir is the expected top-level directory name inside the archive.
	RootDir string

	// AppDir is the subdirectory that marks a multi-file application.
	AppDir string

	// Entrypoint is the entry-point file name inside AppDir.
	Entrypoint string
}

// Member is one regular file inside an archive, with its path relative to
// the snapshot root once the top-level directory is stripped.
type Member struct {
	// Path is slash-separated and relative.
	Path string

	// Data is the full file content.
	Data []byte

	// Mode carries the permission bits recorded in the archive.
	Mode fs.FileMode
}

// Classification is the inspector's verdict for one payload.
type Classification struct {
	// Kind is the application layout shape.
	Kind layout.Kind

	// Entry names the entry point: the lone root file for single-file apps,
	// or the entrypoint path relative to the app directory for multi-file.
	Entry string

	// Script is the entry-point content. Single-file only.
	Script []byte

	// Files are the members under the app directory with paths relative to
	// it. Multi-file only.
	Files []Member
}

// Archive is a parsed container, ready for classification.
type Archive struct {
	format string
	files  []Member
	dirs   map[string]bool
}

// Format reports the detected container format: "zip", "tar.gz", or "tar.zst".
func (a *Archive) Format() string { return a.format }

// Members returns every file member of the archive, paths as stored.
func (a *Archive) Members() []Member {
	return a.files
}

// Magic prefixes for the supported container formats.
var (
	magicZip  = []byte{'P', 'K', 0x03, 0x04}
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Parse decodes an archive payload. The container format is sniffed from the
// payload's leading bytes. Returns ErrMalformedArchive if the payload is not
// a container this inspector understands, or the container is corrupt.
func Parse(payload []byte) (*Archive, error) {
	switch {
	case bytes.HasPrefix(payload, magicZip):
		return parseZip(payload)
	case bytes.HasPrefix(payload, magicGzip):
		return parseTar(payload, "tar.gz")
	case bytes.HasPrefix(payload, magicZstd):
		return parseTar(payload, "tar.zst")
	default:
		return nil, fmt.Errorf("%w: unrecognized container format", pgeterrors.ErrMalformedArchive)
	}
}

// parseZip decodes a zip payload.
func parseZip(payload []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("%w: reading zip: %v", pgeterrors.ErrMalformedArchive, err)
	}

	a := &Archive{format: "zip", dirs: make(map[string]bool)}
	for _, f := range r.File {
		name, err := cleanMemberPath(f.Name)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}

		if f.FileInfo().IsDir() {
			a.addDir(name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening zip member %s: %v", pgeterrors.ErrMalformedArchive, name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading zip member %s: %v", pgeterrors.ErrMalformedArchive, name, err)
		}

		a.addFile(Member{Path: name, Data: data, Mode: f.Mode().Perm()})
	}

	return a, nil
}

// parseTar decodes a compressed tar payload.
func parseTar(payload []byte, format string) (*Archive, error) {
	var raw io.Reader
	switch format {
	case "tar.gz":
		gzr, gzErr := gzip.NewReader(bytes.NewReader(payload))
		if gzErr != nil {
			return nil, fmt.Errorf("%w: reading gzip: %v", pgeterrors.ErrMalformedArchive, gzErr)
		}
		defer gzr.Close()
		raw = gzr
	case "tar.zst":
		zr, zErr := zstd.NewReader(bytes.NewReader(payload))
		if zErr != nil {
			return nil, fmt.Errorf("%w: reading zstd: %v", pgeterrors.ErrMalformedArchive, zErr)
		}
		defer zr.Close()
		raw = zr
	default:
		return nil, fmt.Errorf("%w: unrecognized container format", pgeterrors.ErrMalformedArchive)
	}

	a := &Archive{format: format, dirs: make(map[string]bool)}
	tr := tar.NewReader(raw)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading tar: %v", pgeterrors.ErrMalformedArchive, err)
		}

		name, cleanErr := cleanMemberPath(header.Name)
		if cleanErr != nil {
			return nil, cleanErr
		}
		if name == "" {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			a.addDir(name)
		case tar.TypeReg:
			data, readErr := io.ReadAll(tr)
			if readErr != nil {
				return nil, fmt.Errorf("%w: reading tar member %s: %v", pgeterrors.ErrMalformedArchive, name, readErr)
			}
			a.addFile(Member{Path: name, Data: data, Mode: fs.FileMode(header.Mode).Perm()})
		}
	}

	return a, nil
}

// cleanMemberPath normalizes a member path and rejects names that are
// absolute or escape the archive root.
func cleanMemberPath(name string) (string, error) {
	trimmed := strings.TrimSuffix(name, "/")
	if trimmed == "" {
		return "", nil
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." {
		return "", nil
	}
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: unsafe member path %q", pgeterrors.ErrMalformedArchive, name)
	}
	return cleaned, nil
}

// addFile records a regular file and its implied parent directories.
func (a *Archive) addFile(m Member) {
	a.files = append(a.files, m)
	for dir := path.Dir(m.Path); dir != "." && dir != "/"; dir = path.Dir(dir) {
		a.dirs[dir] = true
	}
}

// addDir records a directory and its implied parents.
func (a *Archive) addDir(name string) {
	for dir := name; dir != "." && dir != "/"; dir = path.Dir(dir) {
		a.dirs[dir] = true
	}
}

// Snapshot returns the archive's file members with the top-level directory
// stripped. Returns ErrNoEntryPoint if nothing in the archive sits under the
// expected top-level directory.
func (a *Archive) Snapshot(rootDir string) ([]Member, error) {
	members, _, err := a.snapshotUnder(rootDir)
	return members, err
}

// snapshotUnder strips rootDir from file and directory paths.
func (a *Archive) snapshotUnder(rootDir string) ([]Member, map[string]bool, error) {
	if !a.dirs[rootDir] {
		return nil, nil, fmt.Errorf("%w: archive has no %q directory", pgeterrors.ErrNoEntryPoint, rootDir)
	}

	prefix := rootDir + "/"
	var members []Member
	for _, m := range a.files {
		if !strings.HasPrefix(m.Path, prefix) {
			continue
		}
		members = append(members, Member{
			Path: strings.TrimPrefix(m.Path, prefix),
			Data: m.Data,
			Mode: m.Mode,
		})
	}

	dirs := make(map[string]bool)
	for d := range a.dirs {
		if strings.HasPrefix(d, prefix) {
			dirs[strings.TrimPrefix(d, prefix)] = true
		}
	}

	return members, dirs, nil
}

// Classify determines the application layout inside the snapshot.
//
// Decision rule: a snapshot containing the conventional app directory is a
// multi-file application whose entry point must be <AppDir>/<Entrypoint>.
// Without an app directory, a snapshot holding exactly one root-level file is
// a single-file application. Anything else has no recognizable entry point,
// including the ambiguous case of several root-level files.
func (a *Archive) Classify(conv Conventions) (*Classification, error) {
	members, dirs, err := a.snapshotUnder(conv.RootDir)
	if err != nil {
		return nil, err
	}

	if dirs[conv.AppDir] {
		return classifyMulti(members, conv)
	}

	var rootFiles []Member
	for _, m := range members {
		if !strings.Contains(m.Path, "/") {
			rootFiles = append(rootFiles, m)
		}
	}
	if len(rootFiles) == 1 {
		return &Classification{
			Kind:   layout.SingleFile,
			Entry:  rootFiles[0].Path,
			Script: rootFiles[0].Data,
		}, nil
	}

	return nil, fmt.Errorf("%w: %d root-level files and no %q directory",
		pgeterrors.ErrNoEntryPoint, len(rootFiles), conv.AppDir)
}

// classifyMulti collects the app directory's members and locates the entry point.
func classifyMulti(members []Member, conv Conventions) (*Classification, error) {
	prefix := conv.AppDir + "/"
	entry := prefix + conv.Entrypoint

	var files []Member
	found := false
	for _, m := range members {
		if !strings.HasPrefix(m.Path, prefix) {
			continue
		}
		rel := strings.TrimPrefix(m.Path, prefix)
		if m.Path == entry {
			found = true
		}
		files = append(files, Member{Path: rel, Data: m.Data, Mode: m.Mode})
	}

	if !found {
		return nil, fmt.Errorf("%w: %q directory has no %q",
			pgeterrors.ErrNoEntryPoint, conv.AppDir, conv.Entrypoint)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &Classification{
		Kind:  layout.MultiFile,
		Entry: conv.Entrypoint,
		Files: files,
	}, nil
}
