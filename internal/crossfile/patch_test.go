package crossfile

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mcumeson/internal/toolchain"
)

const gcc13Output = "arm-none-eabi-gcc (Arm GNU Toolchain 13.2.Rel1 (Build arm-13.7)) 13.2.0 20231009\n"
const gcc10Output = "arm-none-eabi-gcc (GNU Arm Embedded Toolchain 10.3-2021.10) 10.3.1 20210824 (release)\n"

const template = `[constants]
cross_toolchain = '/opt/gcc-arm-none-eabi'
toolchain = cross_toolchain / 'bin/arm-none-eabi-'
additional_c_link_args = []

[built-in options]
c_link_args = ['-mthumb'] + additional_c_link_args
`

func TestLinkArgsGCC(t *testing.T) {
	opts := LinkOptions{LinkScript: "src/my_link.ld", OutputMap: "app.map", BuildDir: "builddir"}
	got := LinkArgs(toolchain.FamilyGCC, gcc13Output, opts)
	require.Equal(t, []string{"-Wl,-no-warn-rwx-segments", "-T../src/my_link.ld", "-Wl,-Map=app.map,--cref"}, got)

	got = LinkArgs(toolchain.FamilyGCC, gcc10Output, opts)
	require.Equal(t, []string{"-T../src/my_link.ld", "-Wl,-Map=app.map,--cref"}, got)
}

func TestLinkArgsWarningFlagVersionGate(t *testing.T) {
	tests := []struct {
		version string
		want    int
	}{
		{"11.3.1", 0},
		{"12.0.0", 1},
		{"12.2.1", 1},
		{"13.2.0", 1},
		{"14.1.0", 1},
	}

	for _, tt := range tests {
		output := "arm-none-eabi-gcc (Arm GNU Toolchain) " + tt.version + " 20240101\n"
		args := LinkArgs(toolchain.FamilyGCC, output, LinkOptions{})
		count := 0
		for _, a := range args {
			if a == noRWXWarningFlag {
				count++
			}
		}
		require.Equal(t, tt.want, count, "version %s", tt.version)
	}
}

func TestLinkArgsArmClang(t *testing.T) {
	opts := LinkOptions{LinkScript: "src/my_link.sct", OutputMap: "app.map", BuildDir: "builddir"}
	got := LinkArgs(toolchain.FamilyArmClang, "Arm Compiler for Embedded 6.21\n", opts)

	want := append([]string{"--scatter=../src/my_link.sct"}, armclangMapFlags...)
	want = append(want, "app.map")
	require.Equal(t, want, got)

	require.Empty(t, LinkArgs(toolchain.FamilyArmClang, "", LinkOptions{}))
}

func TestLinkArgsFollowFileName(t *testing.T) {
	opts := LinkOptions{LinkScript: "link.ld", BuildDir: "build"}
	gcc := LinkArgs(toolchain.FamilyForFile("gcc-arm-none-eabi.ini"), gcc10Output, opts)
	clang := LinkArgs(toolchain.FamilyForFile("armclang.ini"), gcc10Output, opts)
	require.Equal(t, []string{"-T../link.ld"}, gcc)
	require.Equal(t, []string{"--scatter=../link.ld"}, clang)
}

func TestRelativeLinkScript(t *testing.T) {
	require.Equal(t, "../src/my_link.ld", relativeLinkScript("src/my_link.ld", "builddir"))
	require.Equal(t, "../../link.ld", relativeLinkScript("link.ld", "build/arm"))
	require.Equal(t, "link.ld", relativeLinkScript("link.ld", ""))
	require.Equal(t, "", relativeLinkScript("", "builddir"))

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	abs := filepath.Join(root, "src", "link.ld")
	require.Equal(t, "../src/link.ld", relativeLinkScript(abs, filepath.Join(root, "builddir")))

	chdir(t, root)
	require.Equal(t, "../src/link.ld", relativeLinkScript(abs, "builddir"))
	require.Equal(t, "../src/link.ld", relativeLinkScript("src/link.ld", filepath.Join(root, "builddir")))
}

func TestPatchText(t *testing.T) {
	args := []string{"-Wl,-no-warn-rwx-segments", "-T../src/my_link.ld"}
	got, res := PatchText(template, "/home/dev/arm-gnu-toolchain", args)

	require.True(t, res.ToolchainPatched)
	require.True(t, res.LinkArgsPatched)
	require.Empty(t, res.Missing())
	require.Contains(t, got, "cross_toolchain = '/home/dev/arm-gnu-toolchain'\n")
	require.Contains(t, got, "additional_c_link_args = ['-Wl,-no-warn-rwx-segments','-T../src/my_link.ld']\n")
	require.Contains(t, got, "c_link_args = ['-mthumb'] + additional_c_link_args")
}

func TestPatchTextFirstOccurrenceOnly(t *testing.T) {
	text := template + "cross_toolchain = 'second'\nadditional_c_link_args = ['keep']\n"
	got, _ := PatchText(text, "/root", []string{"-x"})

	require.Equal(t, 1, strings.Count(got, "cross_toolchain = '/root'"))
	require.Contains(t, got, "cross_toolchain = 'second'")
	require.Contains(t, got, "additional_c_link_args = ['keep']")
}

func TestPatchTextNoArgsLeavesMarker(t *testing.T) {
	got, res := PatchText(template, "/root", nil)
	require.True(t, res.ToolchainPatched)
	require.False(t, res.LinkArgsPatched)
	require.Empty(t, res.Missing())
	require.Contains(t, got, "additional_c_link_args = []\n")
}

func TestPatchTextMissingMarkers(t *testing.T) {
	text := "[binaries]\nc = 'arm-none-eabi-gcc'\n"
	got, res := PatchText(text, "/root", []string{"-x"})
	require.Equal(t, text, got)
	require.Equal(t, []string{MarkerToolchain, MarkerLinkArgs}, res.Missing())

	// An empty toolchain value does not match the marker either.
	_, res = PatchText("cross_toolchain = ''\n", "/root", nil)
	require.Equal(t, []string{MarkerToolchain}, res.Missing())
}

func TestPatchTextTwice(t *testing.T) {
	args := LinkArgs(toolchain.FamilyGCC, gcc13Output, LinkOptions{LinkScript: "src/my_link.ld", OutputMap: "app.map", BuildDir: "builddir"})

	once, first := PatchText(template, "/opt/arm", args)
	twice, second := PatchText(once, "/opt/arm", args)

	require.Equal(t, once, twice)
	require.Empty(t, first.Missing())
	require.Empty(t, second.Missing())
	require.Equal(t, 1, strings.Count(twice, noRWXWarningFlag))
}

func TestPatchTextTwiceWithBracketArgument(t *testing.T) {
	// An argument containing '[' stops the link-args marker from matching
	// the rewritten list, so the second pass reports it missing.
	args := []string{"-Wl,--defsym=x[0]"}
	once, first := PatchText(template, "/opt/arm", args)
	twice, second := PatchText(once, "/opt/arm", args)

	require.True(t, first.LinkArgsPatched)
	require.False(t, second.LinkArgsPatched)
	require.Equal(t, []string{MarkerLinkArgs}, second.Missing())
	require.Equal(t, once, twice)
}

func TestPatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gcc-arm-none-eabi.ini")
	require.NoError(t, os.WriteFile(path, []byte(template), 0o600))

	res, err := PatchFile(path, "/opt/arm", []string{"-T../link.ld"})
	require.NoError(t, err)
	require.True(t, res.ToolchainPatched)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "cross_toolchain = '/opt/arm'")
	require.Contains(t, string(data), "additional_c_link_args = ['-T../link.ld']")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	_, err = PatchFile(filepath.Join(t.TempDir(), "missing.ini"), "/opt/arm", nil)
	require.Error(t, err)
}
