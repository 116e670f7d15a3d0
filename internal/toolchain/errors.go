package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports that a compiler executable could not be located.
var ErrNotFound = errors.New("toolchain not found")

// NotFoundError names the executable that was searched for and where.
type NotFoundError struct {
	Executable string
	Override   string
	Searched   int
}

func (e *NotFoundError) Error() string {
	if e.Override != "" {
		return fmt.Sprintf("can not find %s in %s", e.Executable, e.Override)
	}
	return fmt.Sprintf("can not find %s in PATH (%d directories searched)", e.Executable, e.Searched)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// VersionQueryError wraps a failed "--version" invocation.
type VersionQueryError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *VersionQueryError) Error() string {
	msg := fmt.Sprintf("%s --version: %v", e.Path, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + firstLine(stderr)
	}
	return msg
}

func (e *VersionQueryError) Unwrap() error {
	return e.Err
}
