package crossfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"mcumeson/internal/toolchain"
)

// Marker names used in PatchResult.
const (
	MarkerToolchain = "cross_toolchain"
	MarkerLinkArgs  = "additional_c_link_args"
)

// MinNoRWXWarningVersion is the first GCC release that warns about RWX
// LOAD segments.
const MinNoRWXWarningVersion = "12"

const noRWXWarningFlag = "-Wl,-no-warn-rwx-segments"

var (
	toolchainMarkerRegex = regexp.MustCompile(`cross_toolchain = '[^']+'`)
	linkArgsMarkerRegex  = regexp.MustCompile(`additional_c_link_args = \[[^\[]*\]`)
)

var armclangMapFlags = []string{
	"--info", "summarysizes",
	"--map",
	"--load_addr_map_info",
	"--xref",
	"--callgraph",
	"--symbols",
	"--info", "sizes",
	"--info", "totals",
	"--info", "unused",
	"--info", "veneers",
	"--list",
}

// LinkOptions carries the caller's link-stage settings.
type LinkOptions struct {
	LinkScript string
	OutputMap  string
	// BuildDir is where meson runs the linker; LinkScript is made relative
	// to it.
	BuildDir string
}

// LinkArgs builds the extra link arguments for family. versionOutput is the
// compiler's "--version" output.
func LinkArgs(family toolchain.Family, versionOutput string, opts LinkOptions) []string {
	var args []string
	script := relativeLinkScript(opts.LinkScript, opts.BuildDir)

	switch family {
	case toolchain.FamilyArmClang:
		if script != "" {
			args = append(args, "--scatter="+script)
		}
		if opts.OutputMap != "" {
			args = append(args, armclangMapFlags...)
			args = append(args, opts.OutputMap)
		}
	default:
		if version, ok := toolchain.ParseGCCVersion(versionOutput); ok && toolchain.AtLeast(version, MinNoRWXWarningVersion) {
			args = append(args, noRWXWarningFlag)
		}
		if script != "" {
			args = append(args, "-T"+script)
		}
		if opts.OutputMap != "" {
			args = append(args, fmt.Sprintf("-Wl,-Map=%s,--cref", opts.OutputMap))
		}
	}
	return args
}

func relativeLinkScript(script, buildDir string) string {
	if script == "" {
		return ""
	}
	if buildDir == "" {
		buildDir = "."
	}
	if filepath.IsAbs(script) != filepath.IsAbs(buildDir) {
		absScript, err := filepath.Abs(script)
		if err != nil {
			return filepath.ToSlash(script)
		}
		absBuild, err := filepath.Abs(buildDir)
		if err != nil {
			return filepath.ToSlash(script)
		}
		script, buildDir = absScript, absBuild
	}
	rel, err := filepath.Rel(filepath.Clean(buildDir), filepath.Clean(script))
	if err != nil {
		// Different volumes on Windows.
		return filepath.ToSlash(script)
	}
	return filepath.ToSlash(rel)
}

// PatchResult records which markers were rewritten.
type PatchResult struct {
	ToolchainPatched bool `json:"toolchain_patched"`
	// LinkArgsPatched is false when no arguments were requested.
	LinkArgsPatched bool     `json:"link_args_patched"`
	LinkArgs        []string `json:"link_args,omitempty"`
}

// Missing returns the markers that were expected but absent.
func (r PatchResult) Missing() []string {
	var missing []string
	if !r.ToolchainPatched {
		missing = append(missing, MarkerToolchain)
	}
	if len(r.LinkArgs) > 0 && !r.LinkArgsPatched {
		missing = append(missing, MarkerLinkArgs)
	}
	return missing
}

// PatchText rewrites the first toolchain marker with root and, when args is
// non-empty, the first link-args marker.
func PatchText(text, root string, args []string) (string, PatchResult) {
	res := PatchResult{LinkArgs: args}

	text, res.ToolchainPatched = replaceFirst(toolchainMarkerRegex, text, fmt.Sprintf("cross_toolchain = '%s'", root))
	if len(args) > 0 {
		list := "['" + strings.Join(args, "','") + "']"
		text, res.LinkArgsPatched = replaceFirst(linkArgsMarkerRegex, text, "additional_c_link_args = "+list)
	}
	return text, res
}

func replaceFirst(re *regexp.Regexp, text, replacement string) (string, bool) {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text, false
	}
	return text[:loc[0]] + replacement + text[loc[1]:], true
}

// PatchFile applies PatchText to the file at path in place.
func PatchFile(path, root string, args []string) (PatchResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return PatchResult{}, fmt.Errorf("stat cross file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PatchResult{}, fmt.Errorf("read cross file: %w", err)
	}

	text, res := PatchText(string(data), root, args)
	if err := os.WriteFile(path, []byte(text), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("write cross file: %w", err)
	}
	return res, nil
}
