package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/Byteram/pget/internal/archive"
	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/layout"
)

// Install fetches, classifies, stages, and atomically deploys a new
// application. On any failure the installation root is left without a trace
// of the application.
func (e *Engine) Install(ctx context.Context, name string, opts InstallOptions) (*Report, error) {
	if err := layout.ValidateName(name); err != nil {
		return nil, &pgeterrors.InstallError{Op: "install", Name: name, Err: err}
	}

	paths := e.plan(name)
	if _, err := os.Lstat(paths.Command); err == nil {
		return nil, &pgeterrors.InstallError{Op: "install", Name: name, Err: pgeterrors.ErrAlreadyInstalled}
	}

	art, stg, err := e.prepare(ctx, name, opts)
	if err != nil {
		return nil, &pgeterrors.InstallError{Op: "install", Name: name, Err: err}
	}
	defer stg.cleanup()

	if err := e.deploy(name, art); err != nil {
		return nil, &pgeterrors.InstallError{Op: "install", Name: name, Err: err}
	}

	return e.report(name, art), nil
}

// prepare runs the failable front half of an installation: fetch, classify,
// and fully stage the new artifact. Nothing under the final target paths is
// touched. Fetcher and inspector errors propagate unchanged.
//
// On success the caller owns the returned staging directory and must clean
// it up; on failure prepare has already done so.
func (e *Engine) prepare(ctx context.Context, name string, opts InstallOptions) (*artifact, *staging, error) {
	payload, err := e.fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	arch, err := archive.Parse(payload)
	if err != nil {
		return nil, nil, err
	}

	conv, err := e.conventionsFor(name)
	if err != nil {
		return nil, nil, err
	}

	if opts.Build {
		members, err := arch.Snapshot(conv.RootDir)
		if err != nil {
			return nil, nil, err
		}
		return e.stageWith(func(stg *staging) (*artifact, error) {
			return e.stageBuild(ctx, stg, name, members)
		})
	}

	cls, err := arch.Classify(conv)
	if err != nil {
		return nil, nil, err
	}

	return e.stageWith(func(stg *staging) (*artifact, error) {
		switch cls.Kind {
		case layout.SingleFile:
			return e.stageSingle(stg, name, cls)
		case layout.MultiFile:
			return e.stageMulti(stg, name, cls)
		default:
			return nil, fmt.Errorf("%w: unknown layout kind %v", pgeterrors.ErrFilesystem, cls.Kind)
		}
	})
}

// stageWith creates a staging directory, runs the materialization step, and
// tears the directory down again if that step fails.
func (e *Engine) stageWith(materialize func(*staging) (*artifact, error)) (*artifact, *staging, error) {
	stg, err := e.newStaging()
	if err != nil {
		return nil, nil, err
	}

	art, err := materialize(stg)
	if err != nil {
		stg.cleanup()
		return nil, nil, err
	}
	return art, stg, nil
}

// deploy moves a staged artifact into its final target paths. The support
// directory, if any, lands first; the command rename is the single
// observable transition point. If the command rename fails, a support
// directory placed moments before is taken back out.
func (e *Engine) deploy(name string, art *artifact) error {
	paths := layout.Plan(e.root, name, art.kind)

	if err := os.MkdirAll(layout.BinDir(e.root), 0755); err != nil {
		return fmt.Errorf("%w: creating bin directory: %v", pgeterrors.ErrFilesystem, err)
	}

	if art.kind == layout.MultiFile {
		if err := os.MkdirAll(layout.ShareDir(e.root), 0755); err != nil {
			return fmt.Errorf("%w: creating share directory: %v", pgeterrors.ErrFilesystem, err)
		}
		// A leftover support directory with no command is corruption from
		// an earlier interrupted run; it is replaced, not merged.
		if err := os.RemoveAll(paths.Support); err != nil {
			return fmt.Errorf("%w: clearing stale support directory: %v", pgeterrors.ErrFilesystem, err)
		}
		if err := rename(art.support, paths.Support); err != nil {
			return fmt.Errorf("%w: placing support directory: %v", pgeterrors.ErrFilesystem, err)
		}
	} else {
		if err := os.RemoveAll(e.plan(name).Support); err != nil {
			return fmt.Errorf("%w: clearing stale support directory: %v", pgeterrors.ErrFilesystem, err)
		}
	}

	if err := rename(art.command, paths.Command); err != nil {
		if art.kind == layout.MultiFile {
			_ = os.RemoveAll(paths.Support)
		}
		return fmt.Errorf("%w: placing command: %v", pgeterrors.ErrFilesystem, err)
	}

	return nil
}

// report assembles the success Report for a deployed artifact.
func (e *Engine) report(name string, art *artifact) *Report {
	paths := layout.Plan(e.root, name, art.kind)
	return &Report{
		Name:        name,
		Kind:        art.kind,
		Entry:       art.entry,
		CommandPath: paths.Command,
		SupportDir:  paths.Support,
		Built:       art.built,
	}
}
