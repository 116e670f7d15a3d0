package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcumeson/internal/crossfile"
	"mcumeson/internal/toolchain"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks references and local paths against projectRoot.
func (c Config) Validate(projectRoot string) []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateCrossFiles(projectRoot)...)
	results = append(results, c.validateLinkScript(projectRoot)...)
	if c.Templates.Jobs < 0 {
		results = append(results, ValidationResult{Level: "error", Message: "templates.jobs must not be negative"})
	}
	return results
}

// Errors filters results down to errors.
func Errors(results []ValidationResult) []ValidationResult {
	var errs []ValidationResult
	for _, r := range results {
		if r.Level == "error" {
			errs = append(errs, r)
		}
	}
	return errs
}

func (c Config) validateCrossFiles(projectRoot string) []ValidationResult {
	if len(c.CrossFiles) == 0 {
		return []ValidationResult{{Level: "error", Message: "cross_files is empty"}}
	}

	var results []ValidationResult
	repo := crossfile.Repository{Base: c.Templates.Repository}
	refs, err := repo.ParseAll(c.CrossFiles)
	if err != nil {
		return []ValidationResult{{Level: "error", Message: err.Error()}}
	}
	for _, ref := range refs {
		if ref.Kind != crossfile.KindLocal {
			continue
		}
		if _, err := os.Stat(resolvePath(projectRoot, ref.Location)); err != nil {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("cross file %q not found", ref.Location),
			})
		}
	}

	first := refs[0].Name
	if !strings.HasSuffix(first, ".ini") {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("first cross file %q does not look like a toolchain file", first),
		})
	}
	for _, ref := range refs[1:] {
		if strings.HasSuffix(ref.Name, "gcc-arm-none-eabi.ini") || toolchain.FamilyForFile(ref.Name) == toolchain.FamilyArmClang {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("toolchain file %q is not first in cross_files and will not be patched", ref.Name),
			})
		}
	}
	return results
}

func (c Config) validateLinkScript(projectRoot string) []ValidationResult {
	if c.LinkScript == "" {
		return nil
	}
	if _, err := os.Stat(resolvePath(projectRoot, c.LinkScript)); err != nil {
		return []ValidationResult{{
			Level:   "warning",
			Message: fmt.Sprintf("link script %q not found", c.LinkScript),
		}}
	}
	return nil
}

func resolvePath(projectRoot, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(projectRoot, path)
}
