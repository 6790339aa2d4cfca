package engine

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Byteram/pget/internal/archive"
	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/layout"
)

// staging is a temporary materialization area inside the installation root.
// Keeping it inside the root makes every move into place a same-filesystem
// rename.
type staging struct {
	dir string
}

// newStaging creates a fresh staging directory under the installation root.
func (e *Engine) newStaging() (*staging, error) {
	if err := os.MkdirAll(e.root, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating installation root: %v", pgeterrors.ErrFilesystem, err)
	}

	dir := filepath.Join(e.root, ".stage-"+uuid.NewString())
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating staging directory: %v", pgeterrors.ErrFilesystem, err)
	}
	return &staging{dir: dir}, nil
}

// cleanup removes the staging directory. Best-effort: failures must not mask
// the error that led here.
func (s *staging) cleanup() {
	if s != nil && s.dir != "" {
		_ = os.RemoveAll(s.dir)
		s.dir = ""
	}
}

// artifact is a fully staged installation, ready to move into place.
type artifact struct {
	kind    layout.Kind
	entry   string
	built   bool
	command string // staged executable
	support string // staged support directory, empty for single-file
}

// stageSingle materializes a single-file application: the entry-point script
// becomes the command directly, with a shebang prepended when it lacks one.
func (e *Engine) stageSingle(stg *staging, name string, cls *archive.Classification) (*artifact, error) {
	cmdPath := stagePath(stg.dir, "bin", name)
	if err := os.MkdirAll(filepath.Dir(cmdPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: staging command: %v", pgeterrors.ErrFilesystem, err)
	}

	script := ensureShebang(cls.Script, e.interpreter)
	if err := os.WriteFile(cmdPath, script, 0755); err != nil {
		return nil, fmt.Errorf("%w: staging command: %v", pgeterrors.ErrFilesystem, err)
	}

	return &artifact{kind: layout.SingleFile, entry: cls.Entry, command: cmdPath}, nil
}

// stageMulti materializes a multi-file application: the full support tree
// plus a generated launcher as the command.
func (e *Engine) stageMulti(stg *staging, name string, cls *archive.Classification) (*artifact, error) {
	supportDir := stagePath(stg.dir, "share", name)
	for _, m := range cls.Files {
		if err := writeMember(supportDir, m); err != nil {
			return nil, err
		}
	}

	cmdPath := stagePath(stg.dir, "bin", name)
	if err := os.MkdirAll(filepath.Dir(cmdPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: staging launcher: %v", pgeterrors.ErrFilesystem, err)
	}
	if err := os.WriteFile(cmdPath, launcherScript(e.interpreter, name, cls.Entry), 0755); err != nil {
		return nil, fmt.Errorf("%w: staging launcher: %v", pgeterrors.ErrFilesystem, err)
	}

	return &artifact{kind: layout.MultiFile, entry: cls.Entry, command: cmdPath, support: supportDir}, nil
}

// stageBuild materializes the entire snapshot, runs the build tool on it,
// and stages the produced binary as a single-file command.
func (e *Engine) stageBuild(ctx context.Context, stg *staging, name string, members []archive.Member) (*artifact, error) {
	if e.builder == nil {
		return nil, fmt.Errorf("%w: no build tool configured", pgeterrors.ErrBuild)
	}

	srcDir := filepath.Join(stg.dir, "src")
	for _, m := range members {
		if err := writeMember(srcDir, m); err != nil {
			return nil, err
		}
	}

	binPath, err := e.builder.Build(ctx, srcDir)
	if err != nil {
		return nil, err
	}

	// Copy rather than rename: build tools like bazel leave outputs behind
	// symlinks into caches on other filesystems.
	cmdPath := stagePath(stg.dir, "bin", name)
	if err := os.MkdirAll(filepath.Dir(cmdPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: staging built binary: %v", pgeterrors.ErrFilesystem, err)
	}
	if err := copyFile(binPath, cmdPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: staging built binary: %v", pgeterrors.ErrFilesystem, err)
	}

	return &artifact{kind: layout.SingleFile, entry: filepath.Base(binPath), built: true, command: cmdPath}, nil
}

// writeMember writes one archive member under baseDir, carrying over the
// execute bit when the archive recorded one.
func writeMember(baseDir string, m archive.Member) error {
	target := filepath.Join(baseDir, filepath.FromSlash(m.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: staging %s: %v", pgeterrors.ErrFilesystem, m.Path, err)
	}

	perm := fs.FileMode(0644)
	if m.Mode&0111 != 0 {
		perm = 0755
	}
	if err := os.WriteFile(target, m.Data, perm); err != nil {
		return fmt.Errorf("%w: staging %s: %v", pgeterrors.ErrFilesystem, m.Path, err)
	}
	return nil
}

// copyFile copies src to dst with the given permissions.
func copyFile(src, dst string, perm fs.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}
	return nil
}
