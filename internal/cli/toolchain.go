package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mcumeson/internal/config"
	"mcumeson/internal/paths"
	"mcumeson/internal/toolchain"
	"mcumeson/internal/tui"
)

var toolchainPath string

func newToolchainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolchain",
		Short: "Show which compilers and meson are available",
		Args:  cobra.NoArgs,
		RunE:  runToolchain,
	}

	cmd.Flags().StringVar(&toolchainPath, "arm_path", "", "Path of the ARM toolchain (directory or its bin)")
	return cmd
}

func runToolchain(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}

	override := toolchainPath
	if override == "" {
		override = pp.ProjectPath(cfg.Toolchain.Path)
	}

	statuses := toolchain.Probe(cmd.Context(), os.Getenv("PATH"), override)

	if outputJSON {
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printStatusTable(cmd, statuses)
	return nil
}

func printStatusTable(cmd *cobra.Command, statuses []toolchain.Status) {
	if len(statuses) == 0 {
		cmd.Println("(no tool statuses)")
		return
	}

	cmd.Printf("%-18s %-12s %-4s %s\n", "Tool", "Version", "OK", "Path")
	for _, st := range statuses {
		ok := "no"
		if st.Available && st.Error == "" {
			ok = "yes"
		}
		path := st.Path
		if path == "" {
			path = "(missing)"
		}
		cmd.Printf("%-18s %-12s %-4s %s\n", st.Name, tui.NonEmptyOrDash(st.Version), ok, path)
		if st.Error != "" && st.Available {
			cmd.Printf("  error: %s\n", st.Error)
		}
	}
}
