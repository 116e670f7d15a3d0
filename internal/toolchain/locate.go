package toolchain

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

var execCommandContext = exec.CommandContext

// Toolchain is a located cross compiler installation.
type Toolchain struct {
	Family   Family `json:"family"`
	Override string `json:"override,omitempty"`
	BinDir   string `json:"bin_dir"`
	Root     string `json:"root"`
	Version  string `json:"version,omitempty"`
}

// Compiler returns the full path of the compiler executable.
func (t Toolchain) Compiler() string {
	return filepath.Join(t.BinDir, t.Family.Executable())
}

// RootSlash returns Root with forward slashes, the form cross files expect.
func (t Toolchain) RootSlash() string {
	return filepath.ToSlash(t.Root)
}

// LocateOptions configures Locate.
type LocateOptions struct {
	Family Family
	// Override is an explicit installation directory. When set the search
	// path is not consulted.
	Override string
	// PathEnv is the command search path value, normally os.Getenv("PATH").
	PathEnv string
}

// Locate finds the compiler for opts.Family and captures its version output.
func Locate(ctx context.Context, opts LocateOptions) (Toolchain, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	family := opts.Family
	if family == "" {
		family = FamilyGCC
	}
	exe := family.Executable()

	tc := Toolchain{Family: family, Override: opts.Override}
	if opts.Override != "" {
		binDir := NormalizeOverride(opts.Override)
		if !isRegularFile(filepath.Join(binDir, exe)) {
			return tc, &NotFoundError{Executable: exe, Override: binDir}
		}
		tc.BinDir = binDir
	} else {
		binDir, err := Search(opts.PathEnv, exe)
		if err != nil {
			return tc, err
		}
		tc.BinDir = binDir
	}
	tc.Root = filepath.Dir(tc.BinDir)

	version, err := QueryVersion(ctx, tc.Compiler())
	if err != nil {
		return tc, err
	}
	tc.Version = version
	return tc, nil
}

// NormalizeOverride makes an explicit toolchain directory point at its bin
// directory. A path already ending in "bin" is kept as-is.
func NormalizeOverride(dir string) string {
	cleaned := filepath.Clean(dir)
	if filepath.Base(cleaned) == "bin" {
		return cleaned
	}
	return filepath.Join(cleaned, "bin")
}

// Search returns the first directory in pathList that contains executable.
func Search(pathList, executable string) (string, error) {
	dirs := filepath.SplitList(pathList)
	searched := 0
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		searched++
		if isRegularFile(filepath.Join(dir, executable)) {
			return filepath.Clean(dir), nil
		}
	}
	return "", &NotFoundError{Executable: executable, Searched: searched}
}

// QueryVersion runs "<compiler> --version" and returns its standard output.
func QueryVersion(ctx context.Context, compiler string) (string, error) {
	cmd := execCommandContext(ctx, compiler, "--version")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return "", &VersionQueryError{Path: compiler, Stderr: stderr.String(), Err: err}
	}
	return string(output), nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
