package engine

import (
	"bytes"
	"fmt"
	"os"
)

// launcherMarker identifies commands generated by pget. Remove and Doctor
// use it to tell launchers from single-file scripts.
const launcherMarker = "# generated by pget"

// launcherMaxProbe bounds how much of a command file is read when probing
// for the marker.
const launcherMaxProbe = 512

// launcherScript renders the thin command installed for a multi-file
// application. It resolves its own location, then execs the interpreter on
// the entry point inside the support directory, so the application's sibling
// modules resolve relative to the entry point.
func launcherScript(interpreter, name, entry string) []byte {
	return []byte(fmt.Sprintf(`#!/bin/sh
%s; do not edit
dir=$(CDPATH= cd -- "$(dirname -- "$0")/.." && pwd)
exec %s "$dir/share/%s/%s" "$@"
`, launcherMarker, interpreter, name, entry))
}

// ensureShebang prepends an interpreter line to a script that lacks one.
// Scripts that carry their own shebang keep it.
func ensureShebang(script []byte, interpreter string) []byte {
	if bytes.HasPrefix(script, []byte("#!")) {
		return script
	}
	return append([]byte("#!/usr/bin/env "+interpreter+"\n"), script...)
}

// isLauncher reports whether the command at path carries the launcher
// marker.
func isLauncher(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, launcherMaxProbe)
	n, _ := f.Read(buf)
	return bytes.Contains(buf[:n], []byte(launcherMarker))
}
