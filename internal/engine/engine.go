// Package engine implements the install/upgrade/remove lifecycle for
// applications.
//
// The engine is the only component that writes to the installation root, and
// it does so under one discipline: new artifacts are fully materialized in a
// staging directory inside the root, then moved into place with the command
// rename as the single observable transition. An interrupted operation leaves
// the root either in its prior state or in the new state, never between.
//
// Concurrent invocations against the same root are not coordinated; the
// design assumes one invoking process at a time.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Byteram/pget/internal/archive"
	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/layout"
	"github.com/Byteram/pget/internal/placeholders"
	"github.com/Byteram/pget/internal/registry"
)

// rename moves artifacts into and out of place. Stubbed in tests to inject
// move failures.
var rename = os.Rename

// Fetcher retrieves the archive payload for an application. The production
// implementation is source.Client; tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Builder compiles a staged snapshot and returns the produced executable's
// path. Only consulted in build mode.
type Builder interface {
	Build(ctx context.Context, dir string) (string, error)
}

// Options configures an Engine.
type Options struct {
	// Root is the installation root directory.
	Root string

	// Fetcher retrieves archive payloads.
	Fetcher Fetcher

	// Conventions are the archive structure expectations. RootDir is a
	// template; {name} and {branch} are expanded per operation.
	Conventions archive.Conventions

	// Branch is the remote branch name used in RootDir expansion.
	Branch string

	// Interpreter runs installed scripts: shebang for single-file apps,
	// exec line for generated launchers.
	Interpreter string

	// Builder is the optional compile-from-source hook.
	Builder Builder
}

// Engine orchestrates fetch, classification, planning, and the atomic
// filesystem transition.
type Engine struct {
	root        string
	fetcher     Fetcher
	conventions archive.Conventions
	branch      string
	interpreter string
	builder     Builder
	reader      *registry.Reader
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("root cannot be empty")
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	if opts.Conventions.RootDir == "" || opts.Conventions.AppDir == "" || opts.Conventions.Entrypoint == "" {
		return nil, fmt.Errorf("archive conventions are incomplete")
	}
	if opts.Interpreter == "" {
		return nil, fmt.Errorf("interpreter cannot be empty")
	}

	return &Engine{
		root:        opts.Root,
		fetcher:     opts.Fetcher,
		conventions: opts.Conventions,
		branch:      opts.Branch,
		interpreter: opts.Interpreter,
		builder:     opts.Builder,
		reader:      registry.NewReader(opts.Root),
	}, nil
}

// InstallOptions carries per-operation flags for Install and Upgrade.
type InstallOptions struct {
	// Build compiles the snapshot with the configured build tool and
	// installs the produced binary instead of the scripts.
	Build bool
}

// Report describes a completed install or upgrade.
type Report struct {
	// Name is the application identifier.
	Name string

	// Kind is the deployed layout shape.
	Kind layout.Kind

	// Entry is the entry point: the root file name for single-file apps,
	// the entrypoint path for multi-file apps, or the binary name when
	// built from source.
	Entry string

	// CommandPath is the installed command.
	CommandPath string

	// SupportDir is the support directory. Empty for single-file apps.
	SupportDir string

	// Built reports whether build mode produced the artifact.
	Built bool
}

// RemoveReport describes a completed removal.
type RemoveReport struct {
	// Name is the application identifier.
	Name string

	// CommandPath is the removed command path.
	CommandPath string

	// SupportDir is the removed support directory, if one was present.
	SupportDir string

	// Inconsistent reports that the prior state was already corrupt: a
	// stray support directory without its command, or a launcher without
	// its support directory.
	Inconsistent bool
}

// Root returns the installation root the engine operates on.
func (e *Engine) Root() string {
	return e.root
}

// Installed returns the installed application identifiers in lexicographic
// order.
func (e *Engine) Installed() ([]string, error) {
	return e.reader.Names()
}

// conventionsFor expands the RootDir template for one application.
func (e *Engine) conventionsFor(name string) (archive.Conventions, error) {
	conv := e.conventions
	rootDir, err := placeholders.Substitute(conv.RootDir, map[string]string{
		"name":   name,
		"branch": e.branch,
	})
	if err != nil {
		return archive.Conventions{}, &pgeterrors.ConfigError{
			Err: fmt.Errorf("expanding archive root_dir: %w", err),
		}
	}
	conv.RootDir = rootDir
	return conv, nil
}

// plan computes both potential target paths for an application, regardless
// of its eventual layout kind.
func (e *Engine) plan(name string) layout.Paths {
	return layout.Plan(e.root, name, layout.MultiFile)
}

// stagePath returns a path inside the staging directory mirroring the final
// layout, so moves into place are pure renames.
func stagePath(stageDir, subdir, name string) string {
	return filepath.Join(stageDir, subdir, name)
}
