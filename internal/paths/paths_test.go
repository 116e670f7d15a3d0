package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolveUsesProjectFlag(t *testing.T) {
	root := t.TempDir()
	pp, err := Resolve(root)
	if err != nil {
		t.Fatal(err)
	}
	if pp.Root != root {
		t.Fatalf("Root = %s, want %s", pp.Root, root)
	}
	if pp.ConfigFile != filepath.Join(root, "mcumeson.yaml") {
		t.Fatalf("ConfigFile = %s", pp.ConfigFile)
	}
	if pp.LogsDir != filepath.Join(root, ".mcumeson", "logs") {
		t.Fatalf("LogsDir = %s", pp.LogsDir)
	}
}

func TestProjectPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX absolute paths")
	}
	root := filepath.Join(string(filepath.Separator)+"work", "firmware")
	abs := filepath.Join(string(filepath.Separator)+"opt", "link.ld")

	same := newProjectPaths(root, root)
	if got := same.ProjectPath("builddir"); got != "builddir" {
		t.Errorf("same dir: got %s", got)
	}
	if got := same.ProjectPath(abs); got != abs {
		t.Errorf("absolute: got %s", got)
	}
	if got := same.ProjectPath(""); got != "" {
		t.Errorf("empty: got %q", got)
	}

	parent := newProjectPaths(root, filepath.Dir(root))
	if got := parent.ProjectPath("builddir"); got != filepath.Join("firmware", "builddir") {
		t.Errorf("parent dir: got %s", got)
	}

	noWD := newProjectPaths(root, "")
	if got := noWD.ProjectPath("builddir"); got != filepath.Join(root, "builddir") {
		t.Errorf("no work dir: got %s", got)
	}
}

func TestLocalReference(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX absolute paths")
	}
	root := filepath.Join(string(filepath.Separator)+"work", "firmware")
	pp := newProjectPaths(root, filepath.Dir(root))

	for _, ref := range []string{"main:a.ini", "tag:v1:a.ini", "https://example.com/a.ini", "http://example.com/a.ini"} {
		if got := pp.LocalReference(ref); got != ref {
			t.Errorf("LocalReference(%q) = %q, want unchanged", ref, got)
		}
	}
	if got := pp.LocalReference("templates/a.ini"); got != filepath.Join("firmware", "templates", "a.ini") {
		t.Errorf("local: got %s", got)
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.ini")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if ok, err := FileExists(file); err != nil || !ok {
		t.Errorf("FileExists(file) = %v, %v", ok, err)
	}
	if ok, err := FileExists(dir); err != nil || ok {
		t.Errorf("FileExists(dir) = %v, %v", ok, err)
	}
	if ok, err := DirExists(dir); err != nil || !ok {
		t.Errorf("DirExists(dir) = %v, %v", ok, err)
	}
	if ok, err := DirExists(filepath.Join(dir, "missing")); err != nil || ok {
		t.Errorf("DirExists(missing) = %v, %v", ok, err)
	}
}
