package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/layout"
)

// Finding is one Doctor observation about an installation.
type Finding struct {
	// Name is the application identifier.
	Name string

	// Kind is the apparent layout shape.
	Kind layout.Kind

	// Healthy is false when the installation violates the lifecycle
	// invariant.
	Healthy bool

	// Detail describes the problem for unhealthy findings.
	Detail string
}

// Doctor scans the installation root for violations of the lifecycle
// invariant: commands that are not executable, launchers whose support
// directory is missing, and support directories with no command. The scan is
// read-only.
func (e *Engine) Doctor() ([]Finding, error) {
	findings := make(map[string]Finding)

	binDir := layout.BinDir(e.root)
	entries, err := os.ReadDir(binDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: reading %s: %v", pgeterrors.ErrFilesystem, binDir, err)
	}

	for _, de := range entries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		name := de.Name()
		findings[name] = e.examineCommand(name)
	}

	// Support directories with no command never show up in bin; scan the
	// share side for them.
	shareDir := layout.ShareDir(e.root)
	shares, err := os.ReadDir(shareDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: reading %s: %v", pgeterrors.ErrFilesystem, shareDir, err)
	}
	for _, de := range shares {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		name := de.Name()
		if _, seen := findings[name]; seen {
			continue
		}
		findings[name] = Finding{
			Name:   name,
			Kind:   layout.MultiFile,
			Detail: "support directory has no command",
		}
	}

	names := make([]string, 0, len(findings))
	for name := range findings {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Finding, 0, len(names))
	for _, name := range names {
		out = append(out, findings[name])
	}
	return out, nil
}

// examineCommand checks one bin entry against the invariant.
func (e *Engine) examineCommand(name string) Finding {
	paths := e.plan(name)

	kind := layout.SingleFile
	launcher := isLauncher(paths.Command)
	if launcher {
		kind = layout.MultiFile
	}

	info, err := os.Stat(paths.Command)
	if err != nil {
		return Finding{Name: name, Kind: kind, Detail: "command cannot be read"}
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
		return Finding{Name: name, Kind: kind, Detail: "command is not executable"}
	}

	if launcher {
		if fi, err := os.Stat(filepath.Join(layout.ShareDir(e.root), name)); err != nil || !fi.IsDir() {
			return Finding{Name: name, Kind: kind, Detail: "launcher's support directory is missing"}
		}
	}

	return Finding{Name: name, Kind: kind, Healthy: true}
}
