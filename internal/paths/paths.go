package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcumeson/internal/config"
)

// ProjectPaths captures canonical locations for a project.
type ProjectPaths struct {
	Root       string
	ConfigFile string
	MetaDir    string
	LogsDir    string
	// WorkDir is the process working directory at resolution time.
	WorkDir string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve working directory: %w", err)
	}

	root := wd
	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
		if err != nil {
			return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
		}
	}

	return newProjectPaths(root, wd), nil
}

func newProjectPaths(root, wd string) ProjectPaths {
	metaDir := filepath.Join(root, ".mcumeson")
	return ProjectPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, config.FileName),
		MetaDir:    metaDir,
		LogsDir:    filepath.Join(metaDir, "logs"),
		WorkDir:    wd,
	}
}

// ProjectPath resolves value against the project root. The result is
// relative to the working directory when possible so that command lines
// stay short.
func (p ProjectPaths) ProjectPath(value string) string {
	if value == "" {
		return ""
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	abs := filepath.Join(p.Root, value)
	if p.WorkDir == "" {
		return abs
	}
	rel, err := filepath.Rel(p.WorkDir, abs)
	if err != nil {
		return abs
	}
	return rel
}

// LocalReference resolves a cross file reference when it names a local
// file; remote and shorthand references are returned unchanged.
func (p ProjectPaths) LocalReference(ref string) string {
	if ref == "" || isRemote(ref) {
		return ref
	}
	return p.ProjectPath(ref)
}

func isRemote(ref string) bool {
	for _, prefix := range []string{"main:", "tag:", "http://", "https://"} {
		if strings.HasPrefix(ref, prefix) {
			return true
		}
	}
	return false
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
