// Package errors provides the structured error hierarchy for the pget CLI.
//
// This package defines base error types for the lifecycle failure modes,
// wrapped error types that add contextual information, and helper functions
// for error wrapping and type checking.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - remote source has no such application
//   - ErrTransport - network, timeout, or partial-read failure
//   - ErrMalformedArchive - payload is not a valid compressed container
//   - ErrNoEntryPoint - no entry point recognizable in the archive
//   - ErrAlreadyInstalled - install target already occupied
//   - ErrNotInstalled - no installation at the planned path
//   - ErrDegraded - upgrade removed the old version but could not place the new one
//   - ErrFilesystem - permission or disk failure during staging or move
//   - ErrInvalidName - identifier is not a valid command name
//   - ErrBuild - build tool failed or produced no executable
//
// Wrapped error types (add context):
//   - InstallError{Op, Name, Err} - install/upgrade failures
//   - RemoveError{Name, Err} - removal failures
//   - ConfigError{Path, Err} - configuration errors
//
// # Usage
//
//	// Use sentinel errors directly
//	return errors.ErrNotInstalled
//
//	// Wrap with context using Wrap
//	return errors.Wrap(err, "stage")
//
//	// Use structured error types
//	return &errors.InstallError{Op: "install", Name: "yday", Err: errors.ErrAlreadyInstalled}
//
//	// Check error types
//	if errors.IsNotFound(err) {
//	    // preserve the prior installation
//	}
package errors

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	// ErrNotFound indicates the remote source has no such application.
	ErrNotFound = baseError("application not found")

	// ErrTransport indicates a network, timeout, or partial-read failure.
	ErrTransport = baseError("transport failure")

	// ErrMalformedArchive indicates the payload is not a valid compressed container.
	ErrMalformedArchive = baseError("malformed archive")

	// ErrNoEntryPoint indicates no entry point could be located in the archive.
	ErrNoEntryPoint = baseError("no entry point")

	// ErrAlreadyInstalled indicates the install target is already occupied.
	ErrAlreadyInstalled = baseError("already installed")

	// ErrNotInstalled indicates no installation exists at the planned path.
	ErrNotInstalled = baseError("not installed")

	// ErrDegraded indicates an upgrade removed the old version but could not
	// place the new one. The command set is worse than before the operation;
	// callers must surface this distinctly and never swallow it.
	ErrDegraded = baseError("degraded state: previous version removed, new version not installed")

	// ErrFilesystem indicates a permission or disk failure during staging or move.
	ErrFilesystem = baseError("filesystem failure")

	// ErrInvalidName indicates the identifier is not a valid command name.
	ErrInvalidName = baseError("invalid application name")

	// ErrBuild indicates the build tool failed or produced no executable.
	ErrBuild = baseError("build failed")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// InstallError represents a failure during an install or upgrade operation.
type InstallError struct {
	// Op is the operation being performed ("install" or "upgrade").
	Op string
	// Name is the application identifier.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *InstallError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q: %s", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// RemoveError represents a failure during a removal operation.
type RemoveError struct {
	// Name is the application identifier.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *RemoveError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("remove %q: %s", e.Name, e.Err)
	}
	return fmt.Sprintf("remove: %s", e.Err)
}

func (e *RemoveError) Unwrap() error { return e.Err }

// ConfigError represents an error related to configuration.
type ConfigError struct {
	// Path is the configuration file path (optional).
	Path string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Wrap adds context to an error by wrapping it with an operation name.
// The returned error implements Unwrap() allowing errors.Is and errors.As
// to work with the wrapped error.
func Wrap(err error, op string) error {
	return &wrappedError{op: op, err: err}
}

// wrappedError is an error with an operation context.
type wrappedError struct {
	op  string
	err error
}

func (e *wrappedError) Error() string { return fmt.Sprintf("%s: %s", e.op, e.err) }
func (e *wrappedError) Unwrap() error { return e.err }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransport reports whether err is or wraps ErrTransport.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsMalformedArchive reports whether err is or wraps ErrMalformedArchive.
func IsMalformedArchive(err error) bool {
	return errors.Is(err, ErrMalformedArchive)
}

// IsNoEntryPoint reports whether err is or wraps ErrNoEntryPoint.
func IsNoEntryPoint(err error) bool {
	return errors.Is(err, ErrNoEntryPoint)
}

// IsAlreadyInstalled reports whether err is or wraps ErrAlreadyInstalled.
func IsAlreadyInstalled(err error) bool {
	return errors.Is(err, ErrAlreadyInstalled)
}

// IsNotInstalled reports whether err is or wraps ErrNotInstalled.
func IsNotInstalled(err error) bool {
	return errors.Is(err, ErrNotInstalled)
}

// IsDegraded reports whether err is or wraps ErrDegraded.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrDegraded)
}

// IsFilesystem reports whether err is or wraps ErrFilesystem.
func IsFilesystem(err error) bool {
	return errors.Is(err, ErrFilesystem)
}

// IsInvalidName reports whether err is or wraps ErrInvalidName.
func IsInvalidName(err error) bool {
	return errors.Is(err, ErrInvalidName)
}

// IsBuild reports whether err is or wraps ErrBuild.
func IsBuild(err error) bool {
	return errors.Is(err, ErrBuild)
}

// AsInstallError reports whether err can be typed as an *InstallError.
func AsInstallError(err error) (*InstallError, bool) {
	var ie *InstallError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// AsRemoveError reports whether err can be typed as a *RemoveError.
func AsRemoveError(err error) (*RemoveError, bool) {
	var re *RemoveError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// AsConfigError reports whether err can be typed as a *ConfigError.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
