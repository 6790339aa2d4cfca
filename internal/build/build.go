// Package build runs the configured build tool inside a staged snapshot and
// locates the executable it produces.
package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Byteram/pget/internal/config"
	pgeterrors "github.com/Byteram/pget/internal/errors"
)

// outputTail caps how much build-tool output is carried into an error.
const outputTail = 2048

// Runner invokes the build tool from configuration.
type Runner struct {
	command   string
	args      []string
	outputDir string
}

// NewRunner creates a Runner from the build configuration.
func NewRunner(cfg config.BuildConfig) *Runner {
	return &Runner{
		command:   cfg.Command,
		args:      cfg.Args,
		outputDir: cfg.OutputDir,
	}
}

// Build runs the build tool in dir and returns the path of the produced
// executable: the first executable regular file, in lexicographic order,
// under the configured output directory. A failed tool invocation or an
// empty output directory yields ErrBuild.
func (r *Runner) Build(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %v: %s",
			pgeterrors.ErrBuild, r.command, strings.Join(r.args, " "), err, tail(output))
	}

	return r.findExecutable(filepath.Join(dir, r.outputDir))
}

// findExecutable scans outDir for the built artifact.
func (r *Runner) findExecutable(outDir string) (string, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("%w: reading output directory %s: %v", pgeterrors.ErrBuild, r.outputDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if executable(info.Mode()) {
			return filepath.Join(outDir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: no executable produced in %s", pgeterrors.ErrBuild, r.outputDir)
}

// executable reports whether the mode carries an execute bit. Permission
// bits are meaningless on Windows, where every regular file counts.
func executable(mode fs.FileMode) bool {
	if runtime.GOOS == "windows" {
		return true
	}
	return mode.Perm()&0111 != 0
}

// tail trims build output to its last chunk for error reporting.
func tail(output []byte) string {
	s := strings.TrimSpace(string(output))
	if len(s) > outputTail {
		s = "..." + s[len(s)-outputTail:]
	}
	return s
}
