package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/layout"
)

// Upgrade replaces an installed application with a freshly fetched snapshot.
//
// The existing installation is not disturbed until the new artifact has been
// fetched, classified, and fully staged, so fetch and archive failures leave
// the old installation byte-identical. During the swap the old artifact is
// moved aside into staging; if placing the new one fails it is restored, and
// only if that restoration also fails does the operation report ErrDegraded,
// the one failure after which the application is no longer installed.
func (e *Engine) Upgrade(ctx context.Context, name string, opts InstallOptions) (*Report, error) {
	if err := layout.ValidateName(name); err != nil {
		return nil, &pgeterrors.InstallError{Op: "upgrade", Name: name, Err: err}
	}

	paths := e.plan(name)
	if _, err := os.Lstat(paths.Command); err != nil {
		return nil, &pgeterrors.InstallError{Op: "upgrade", Name: name, Err: pgeterrors.ErrNotInstalled}
	}

	art, stg, err := e.prepare(ctx, name, opts)
	if err != nil {
		return nil, &pgeterrors.InstallError{Op: "upgrade", Name: name, Err: err}
	}
	defer stg.cleanup()

	if err := e.swap(name, art, stg); err != nil {
		return nil, &pgeterrors.InstallError{Op: "upgrade", Name: name, Err: err}
	}

	return e.report(name, art), nil
}

// swap exchanges the installed artifact for the staged one. The old artifact
// is parked inside the staging directory, which the caller discards on
// success.
func (e *Engine) swap(name string, art *artifact, stg *staging) error {
	paths := e.plan(name)

	oldDir := filepath.Join(stg.dir, "old")
	if err := os.Mkdir(oldDir, 0755); err != nil {
		return fmt.Errorf("%w: creating swap area: %v", pgeterrors.ErrFilesystem, err)
	}
	asideCmd := filepath.Join(oldDir, "command")
	asideSup := filepath.Join(oldDir, "share")

	// Park the old command first: once it is gone the application is
	// uninstalled from an observer's point of view, and everything from
	// here on either completes the upgrade or restores this exact state.
	if err := rename(paths.Command, asideCmd); err != nil {
		return fmt.Errorf("%w: parking old command: %v", pgeterrors.ErrFilesystem, err)
	}

	hadSupport := false
	if _, err := os.Lstat(paths.Support); err == nil {
		hadSupport = true
		if err := rename(paths.Support, asideSup); err != nil {
			return e.restoreOrDegrade(name, paths, asideCmd, asideSup, false,
				fmt.Errorf("%w: parking old support directory: %v", pgeterrors.ErrFilesystem, err))
		}
	}

	if art.kind == layout.MultiFile {
		if err := os.MkdirAll(layout.ShareDir(e.root), 0755); err != nil {
			return e.restoreOrDegrade(name, paths, asideCmd, asideSup, hadSupport,
				fmt.Errorf("%w: creating share directory: %v", pgeterrors.ErrFilesystem, err))
		}
		if err := rename(art.support, paths.Support); err != nil {
			return e.restoreOrDegrade(name, paths, asideCmd, asideSup, hadSupport,
				fmt.Errorf("%w: placing support directory: %v", pgeterrors.ErrFilesystem, err))
		}
	}

	if err := rename(art.command, paths.Command); err != nil {
		if art.kind == layout.MultiFile {
			_ = os.RemoveAll(paths.Support)
		}
		return e.restoreOrDegrade(name, paths, asideCmd, asideSup, hadSupport,
			fmt.Errorf("%w: placing command: %v", pgeterrors.ErrFilesystem, err))
	}

	return nil
}

// restoreOrDegrade tries to put the parked old artifact back after a failed
// swap step. If restoration succeeds the original failure is returned alone;
// if it fails too, the failure is escalated to ErrDegraded, which callers
// must surface distinctly: the application that existed before the upgrade
// is now gone.
func (e *Engine) restoreOrDegrade(name string, paths layout.Paths, asideCmd, asideSup string, hadSupport bool, cause error) error {
	if hadSupport {
		if _, err := os.Lstat(asideSup); err == nil {
			if err := rename(asideSup, paths.Support); err != nil {
				return fmt.Errorf("%w: %q: restoring support directory: %v (after: %v)",
					pgeterrors.ErrDegraded, name, err, cause)
			}
		}
	}
	if err := rename(asideCmd, paths.Command); err != nil {
		return fmt.Errorf("%w: %q: restoring command: %v (after: %v)",
			pgeterrors.ErrDegraded, name, err, cause)
	}
	return cause
}
