package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mcumeson/internal/config"
	"mcumeson/internal/paths"
	"mcumeson/internal/tui"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the project configuration without touching the build directory",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}

	results := cfg.Validate(pp.Root)

	if outputJSON {
		payload := struct {
			Project string                    `json:"project"`
			Results []config.ValidationResult `json:"results"`
		}{
			Project: pp.Root,
			Results: results,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode validate json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		writeValidationResults(cmd.OutOrStdout(), results)
	}

	if errs := config.Errors(results); len(errs) > 0 {
		return fmt.Errorf("configuration has %d error(s)", len(errs))
	}
	return nil
}

func writeValidationResults(out io.Writer, results []config.ValidationResult) {
	if len(results) == 0 {
		fmt.Fprintf(out, "%s configuration is valid\n", tui.Success.Render("OK:"))
		return
	}
	for _, r := range results {
		label := tui.Warning.Render("Warning:")
		if r.Level == "error" {
			label = tui.Failure.Render("Error:")
		}
		fmt.Fprintf(out, "%s %s\n", label, r.Message)
	}
}
