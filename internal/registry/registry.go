// Package registry enumerates installed applications.
//
// There is no manifest: the installation root's bin directory is the catalog.
// The reader derives everything from what is present and executable there,
// which keeps it read-only by construction.
package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/layout"
)

// Entry describes one installed application.
type Entry struct {
	// Name is the application identifier, equal to the command file name.
	Name string

	// Kind is derived from the presence of a support directory.
	Kind layout.Kind

	// CommandPath is the installed command, <root>/bin/<name>.
	CommandPath string

	// SupportDir is the support directory path. Empty for single-file apps.
	SupportDir string
}

// Reader lists installed applications under one installation root.
type Reader struct {
	root string
}

// NewReader creates a Reader over the given installation root.
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// Names returns the installed application identifiers in lexicographic
// order. A missing bin directory reads as an empty registry.
func (r *Reader) Names() ([]string, error) {
	entries, err := r.Entries()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// Entries returns the installed applications in lexicographic order by name.
// Subdirectories, dot-files, and non-executable files in the bin directory
// are not installed commands and are skipped.
func (r *Reader) Entries() ([]Entry, error) {
	binDir := layout.BinDir(r.root)

	dirEntries, err := os.ReadDir(binDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", pgeterrors.ErrFilesystem, binDir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}

		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %v", pgeterrors.ErrFilesystem, de.Name(), err)
		}
		if !executable(info.Mode()) {
			continue
		}

		name := de.Name()
		entry := Entry{
			Name:        name,
			Kind:        layout.SingleFile,
			CommandPath: filepath.Join(binDir, name),
		}

		supportDir := filepath.Join(layout.ShareDir(r.root), name)
		if sInfo, sErr := os.Stat(supportDir); sErr == nil && sInfo.IsDir() {
			entry.Kind = layout.MultiFile
			entry.SupportDir = supportDir
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// executable reports whether the mode carries an execute bit. Permission
// bits are meaningless on Windows, where every regular file counts.
func executable(mode fs.FileMode) bool {
	if runtime.GOOS == "windows" {
		return true
	}
	return mode.Perm()&0111 != 0
}
