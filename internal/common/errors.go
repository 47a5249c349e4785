// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Scanning and extraction errors.
	ErrExtraction     = errors.New("extraction failed")
	ErrScanPermission = errors.New("permission denied while scanning")

	// Filesystem mutation errors.
	ErrMove    = errors.New("move failed")
	ErrRestore = errors.New("restore failed")

	// Ledger errors.
	ErrLedgerCorrupted = errors.New("transaction ledger corrupted")
	ErrNoSession       = errors.New("no session to undo")
	ErrLocked          = errors.New("another sortsense instance is already running")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PathError ties a failure category to the operation and path that produced it.
// Kind is one of the sentinel errors above so callers can use errors.Is.
type PathError struct {
	Kind error
	Err  error
	Op   string
	Path string
}

func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
}

func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewPathError creates a categorized error for a path.
func NewPathError(kind error, op, path string, err error) error {
	return &PathError{Kind: kind, Op: op, Path: path, Err: err}
}

// ConfigError reports a configuration problem detected before any work starts.
// It always unwraps to ErrInvalidConfig.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidConfig, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrInvalidConfig, e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfigError creates a configuration error for the given key.
func NewConfigError(key, format string, args ...any) error {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
