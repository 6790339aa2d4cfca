// Package layout computes target filesystem paths for installed applications.
//
// Planning is a pure function of (installation root, identifier, layout kind):
// no filesystem access happens here. Determinism is what lets Upgrade and
// Remove locate a prior installation without any separate index.
package layout

import (
	"fmt"
	"path/filepath"
	"regexp"

	pgeterrors "github.com/Byteram/pget/internal/errors"
)

// Kind is the shape of an installed application.
type Kind int

const (
	// SingleFile is one executable script installed directly as the command.
	SingleFile Kind = iota

	// MultiFile is a launcher command paired with a support directory.
	MultiFile
)

// String returns the human-readable name of the layout kind.
func (k Kind) String() string {
	switch k {
	case SingleFile:
		return "single-file"
	case MultiFile:
		return "multi-file"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Paths holds the planned target locations for one application.
type Paths struct {
	// Command is the installed command path, <root>/bin/<name>.
	Command string

	// Support is the support directory path, <root>/share/<name>.
	// Empty for single-file applications.
	Support string
}

// BinDir returns the command directory under the installation root.
func BinDir(root string) string {
	return filepath.Join(root, "bin")
}

// ShareDir returns the support-directory parent under the installation root.
func ShareDir(root string) string {
	return filepath.Join(root, "share")
}

// Plan computes the target paths for an application. Same inputs always
// yield the same paths.
func Plan(root, name string, kind Kind) Paths {
	p := Paths{
		Command: filepath.Join(BinDir(root), name),
	}
	if kind == MultiFile {
		p.Support = filepath.Join(ShareDir(root), name)
	}
	return p
}

// nameRegex matches valid application identifiers: a filename component that
// starts with an alphanumeric (so it can never be hidden or traverse paths).
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateName checks that an identifier is usable as a command name on the
// supported platforms. Returns ErrInvalidName with a reason otherwise.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", pgeterrors.ErrInvalidName)
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: name exceeds 255 bytes", pgeterrors.ErrInvalidName)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q is not a valid command name", pgeterrors.ErrInvalidName, name)
	}
	return nil
}
