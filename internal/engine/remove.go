package engine

import (
	"context"
	"fmt"
	"os"

	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/layout"
)

// Remove deletes an installed application: its command and, when present,
// its support directory.
//
// Half-installed states are treated as recoverable: a stray support
// directory with no command, or a launcher with no support directory, is
// cleaned up without failing, with the inconsistency flagged in the report.
// Only a fully absent application yields ErrNotInstalled.
func (e *Engine) Remove(ctx context.Context, name string) (*RemoveReport, error) {
	if err := layout.ValidateName(name); err != nil {
		return nil, &pgeterrors.RemoveError{Name: name, Err: err}
	}

	paths := e.plan(name)

	cmdExists := false
	if _, err := os.Lstat(paths.Command); err == nil {
		cmdExists = true
	}
	supportExists := false
	if _, err := os.Lstat(paths.Support); err == nil {
		supportExists = true
	}

	if !cmdExists {
		if !supportExists {
			return nil, &pgeterrors.RemoveError{Name: name, Err: pgeterrors.ErrNotInstalled}
		}
		// Corruption: support directory with no command. Clean it up and
		// report the inconsistency instead of failing.
		if err := os.RemoveAll(paths.Support); err != nil {
			return nil, &pgeterrors.RemoveError{Name: name,
				Err: fmt.Errorf("%w: removing support directory: %v", pgeterrors.ErrFilesystem, err)}
		}
		return &RemoveReport{Name: name, SupportDir: paths.Support, Inconsistent: true}, nil
	}

	launcher := isLauncher(paths.Command)

	if err := os.Remove(paths.Command); err != nil {
		return nil, &pgeterrors.RemoveError{Name: name,
			Err: fmt.Errorf("%w: removing command: %v", pgeterrors.ErrFilesystem, err)}
	}

	report := &RemoveReport{Name: name, CommandPath: paths.Command}
	if supportExists {
		if err := os.RemoveAll(paths.Support); err != nil {
			return nil, &pgeterrors.RemoveError{Name: name,
				Err: fmt.Errorf("%w: removing support directory: %v", pgeterrors.ErrFilesystem, err)}
		}
		report.SupportDir = paths.Support
	}

	// A launcher without its support directory was already a broken
	// installation before this call.
	if launcher && !supportExists {
		report.Inconsistent = true
	}

	return report, nil
}
