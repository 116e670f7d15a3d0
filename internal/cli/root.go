package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"mcumeson/internal/meson"
	"mcumeson/internal/toolchain"
	"mcumeson/internal/tui"
)

var (
	projectDir string
	outputJSON bool
)

// Execute runs the root cobra command and exits with the status of the
// failed step.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mcumeson",
		Short:         "Prepare Meson cross build directories for MCU projects",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to project directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newToolchainCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newSetupCmd())

	return cmd
}

// reportError prints err and returns the process exit code. A failed meson
// run forwards meson's own status.
func reportError(w io.Writer, err error) int {
	var exitErr *meson.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintf(w, "%s %v\n", tui.Failure.Render("error:"), err)
		return exitErr.Code
	}

	var notFound *toolchain.NotFoundError
	if errors.As(err, &notFound) {
		fmt.Fprintf(w, "%s %s\n", tui.Failure.Render("Can not find:"), notFound.Executable)
		if notFound.Override != "" {
			fmt.Fprintf(w, "  looked in %s\n", notFound.Override)
		}
		return 1
	}

	fmt.Fprintf(w, "%s %v\n", tui.Failure.Render("error:"), err)
	return 1
}
