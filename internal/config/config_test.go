package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BuildDir != "builddir" {
		t.Errorf("BuildDir = %q, want builddir", cfg.BuildDir)
	}
	if len(cfg.CrossFiles) != 2 || cfg.CrossFiles[0] != "main:gcc-arm-none-eabi.ini" {
		t.Errorf("unexpected default cross files %v", cfg.CrossFiles)
	}
	if !cfg.Meson.VSEnvValue() {
		t.Error("expected vsenv enabled by default")
	}
	if cfg.Templates.Jobs != 1 {
		t.Errorf("Jobs = %d, want 1", cfg.Templates.Jobs)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	contents := `cross_files:
  - tag:v1.0:armclang.ini
  - ../templates/clang-cortex-m3.ini
link_script: src/my_link.sct
output_map: app.map
meson:
  vsenv: false
  args: ["--buildtype=minsize"]
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BuildDir != "builddir" || cfg.Version != 1 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.CrossFiles[0] != "tag:v1.0:armclang.ini" || len(cfg.CrossFiles) != 2 {
		t.Errorf("CrossFiles = %v", cfg.CrossFiles)
	}
	if cfg.Meson.VSEnvValue() {
		t.Error("expected vsenv disabled")
	}
	if cfg.Meson.Command != "meson" {
		t.Errorf("Command = %q", cfg.Meson.Command)
	}
	if len(cfg.Meson.Args) != 1 || cfg.Meson.Args[0] != "--buildtype=minsize" {
		t.Errorf("Args = %v", cfg.Meson.Args)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("cross_files: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unmarshal config") {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
}

func TestMarshalRoundTripKeepsKeys(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, key := range []string{"build_dir: builddir", "cross_files:", "main:gcc-arm-none-eabi.ini", "vsenv: true", "repository: https://raw.githubusercontent.com/JalonWong/mcu_meson"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %q in:\n%s", key, data)
		}
	}
}

func TestValidate(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "local.ini"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.CrossFiles = []string{"local.ini", "missing.ini", "main:gcc-arm-none-eabi.ini"}
	cfg.LinkScript = "src/link.ld"

	results := cfg.Validate(root)
	errs := Errors(results)
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "missing.ini") {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var warnings []string
	for _, r := range results {
		if r.Level == "warning" {
			warnings = append(warnings, r.Message)
		}
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings (toolchain order, link script), got %v", warnings)
	}
}

func TestValidateValidDefaults(t *testing.T) {
	if results := Default().Validate(t.TempDir()); len(results) != 0 {
		t.Fatalf("expected no findings, got %v", results)
	}
}

func TestValidateBadReference(t *testing.T) {
	cfg := Default()
	cfg.CrossFiles = []string{"tag:only-revision"}
	errs := Errors(cfg.Validate(t.TempDir()))
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
}
