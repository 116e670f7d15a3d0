package meson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
)

// DefaultTool is the build-system generator command.
const DefaultTool = "meson"

var execCommandContext = exec.CommandContext

// Invocation is one "meson setup" command line.
type Invocation struct {
	Tool        string
	BuildDir    string
	CrossFiles  []string
	Reconfigure bool
	VSEnv       bool
	Extra       []string
}

// Args returns the arguments after the tool name.
func (inv Invocation) Args() []string {
	args := []string{"setup", inv.BuildDir}
	for _, f := range inv.CrossFiles {
		args = append(args, "--cross-file="+f)
	}
	if inv.Reconfigure {
		args = append(args, "--reconfigure")
	}
	if inv.VSEnv {
		args = append(args, "--vsenv")
	}
	return append(args, inv.Extra...)
}

// String renders the command line for display.
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.tool()}, inv.Args()...), " ")
}

func (inv Invocation) tool() string {
	if inv.Tool == "" {
		return DefaultTool
	}
	return inv.Tool
}

// ExitError carries a non-zero meson exit status.
type ExitError struct {
	Code int
	Cmd  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
}

// Runner executes invocations synchronously.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// Run executes inv and waits for it. A non-zero exit is returned as
// *ExitError.
func (r Runner) Run(ctx context.Context, inv Invocation) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := execCommandContext(ctx, inv.tool(), inv.Args()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = writerOr(r.Stdout, os.Stdout)
	cmd.Stderr = writerOr(r.Stderr, os.Stderr)

	r.logf("run: %s", inv)
	err := cmd.Run()
	if err == nil {
		r.logf("done: %s", inv)
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		r.logf("failed: %s: exit status %d", inv, exitErr.ExitCode())
		return &ExitError{Code: exitErr.ExitCode(), Cmd: inv.String()}
	}
	r.logf("failed: %s: %v", inv, err)
	return fmt.Errorf("run %s: %w", inv.tool(), err)
}

func (r Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

// RemoveBuildDir deletes dir recursively when it exists.
func RemoveBuildDir(dir string) (bool, error) {
	if strings.TrimSpace(dir) == "" {
		return false, errors.New("remove build dir: empty path")
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("remove %s: %w", dir, err)
	}
	return true, nil
}
