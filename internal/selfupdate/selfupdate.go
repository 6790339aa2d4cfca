// Package selfupdate implements self-update functionality for pget.
//
// The updater checks GitHub releases for a newer build, downloads the
// release archive for the running platform, verifies it against the
// published checksums, and swaps the running binary using the same
// park-then-place discipline the engine applies to installed apps.
package selfupdate

import (
	"errors"
	"regexp"
	"runtime"
	"strings"
)

// ErrChecksumMismatch reports a downloaded asset whose SHA-256 digest does
// not match the published checksums file.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ProgressHook is called as the release asset streams into memory, with
// bytes downloaded so far and the total (-1 when unknown).
type ProgressHook func(downloaded, total int64)

// Platform identifies an OS/architecture pair for asset selection.
type Platform struct {
	OS   string
	Arch string
}

// CurrentPlatform returns the platform of the running binary.
func CurrentPlatform() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// String returns the platform in "os_arch" form, the shape release asset
// names carry.
func (p Platform) String() string {
	return p.OS + "_" + p.Arch
}

// ArchiveExtension returns the release archive extension for the platform.
func (p Platform) ArchiveExtension() string {
	if p.OS == "windows" {
		return ".zip"
	}
	return ".tar.gz"
}

var semverRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)`)

// newerThan reports whether latest is a newer version than current.
// Development builds ("dev", "unknown") always count as older than any
// release.
func newerThan(latest, current string) bool {
	current = strings.TrimPrefix(current, "v")
	latest = strings.TrimPrefix(latest, "v")

	if current == "dev" || current == "unknown" {
		return true
	}

	cur := parseSemver(current)
	lat := parseSemver(latest)
	for i := 0; i < 3; i++ {
		if lat[i] != cur[i] {
			return lat[i] > cur[i]
		}
	}
	return false
}

// parseSemver extracts [major, minor, patch], ignoring any pre-release
// suffix. Unparseable versions read as 0.0.0.
func parseSemver(v string) [3]int {
	m := semverRe.FindStringSubmatch(v)
	if m == nil {
		return [3]int{}
	}
	return [3]int{atoi(m[1]), atoi(m[2]), atoi(m[3])}
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
