// Package setup prepares a Meson cross build directory: it locates the cross
// toolchain, materializes the cross files, patches the first one and runs
// "meson setup".
package setup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"runtime"

	"mcumeson/internal/crossfile"
	"mcumeson/internal/meson"
	"mcumeson/internal/toolchain"
)

// CrossFilesDirName is the subdirectory of the build directory that holds
// the resolved cross files.
const CrossFilesDirName = "cross_files"

// Options is the fully resolved input of one setup run.
type Options struct {
	BuildDir string
	// CrossFiles are references; the first one must declare the toolchain.
	CrossFiles []string
	LinkScript string
	OutputMap  string
	// ToolchainPath overrides the search path lookup.
	ToolchainPath string
	PathEnv       string
	Native        bool
	Wipe          bool
	Reconfigure   bool
	// VSEnv requests --vsenv for the native build on Windows.
	VSEnv      bool
	Extra      []string
	Jobs       int
	Repository crossfile.Repository
	MesonTool  string
	// GOOS defaults to runtime.GOOS.
	GOOS string
}

// NativeBuildDir returns the directory used for the native configuration.
func (o Options) NativeBuildDir() string {
	return o.BuildDir + "-native"
}

// CrossFilesDir returns where resolved cross files are stored.
func (o Options) CrossFilesDir() string {
	return filepath.Join(o.BuildDir, CrossFilesDirName)
}

func (o Options) goos() string {
	if o.GOOS == "" {
		return runtime.GOOS
	}
	return o.GOOS
}

// Runner executes meson invocations.
type Runner interface {
	Run(ctx context.Context, inv meson.Invocation) error
}

// Observer is notified as the run progresses. All methods are optional
// through NopObserver embedding.
type Observer interface {
	ToolchainFound(tc toolchain.Toolchain)
	Removed(dir string)
	Running(inv meson.Invocation)
	Patched(path string, res crossfile.PatchResult)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ToolchainFound(toolchain.Toolchain) {}
func (NopObserver) Removed(string) {}
func (NopObserver) Running(meson.Invocation) {}
func (NopObserver) Patched(string, crossfile.PatchResult) {}

// Result summarizes a completed run.
type Result struct {
	Toolchain  toolchain.Toolchain   `json:"toolchain"`
	CrossFiles []string              `json:"cross_files"`
	Patch      crossfile.PatchResult `json:"patch"`
	Removed    []string              `json:"removed,omitempty"`
	Native     bool                  `json:"native"`
}

// Setup wires the collaborators of a run.
type Setup struct {
	Runner   Runner
	Client   *http.Client
	Reporter crossfile.Reporter
	Observer Observer
	Logger   *log.Logger
	// Locate defaults to toolchain.Locate.
	Locate func(ctx context.Context, opts toolchain.LocateOptions) (toolchain.Toolchain, error)
}

// Run executes the whole sequence. The toolchain is located before anything
// is removed, downloaded or executed.
func (s *Setup) Run(ctx context.Context, opts Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var res Result

	if opts.BuildDir == "" {
		return res, errors.New("setup: build directory not set")
	}
	if len(opts.CrossFiles) == 0 {
		return res, errors.New("setup: no cross files given")
	}
	if s.Runner == nil {
		return res, errors.New("setup: no meson runner")
	}

	refs, err := opts.Repository.ParseAll(opts.CrossFiles)
	if err != nil {
		return res, err
	}

	family := toolchain.FamilyForFile(refs[0].Name)
	tc, err := s.locate(ctx, toolchain.LocateOptions{Family: family, Override: opts.ToolchainPath, PathEnv: opts.PathEnv})
	if err != nil {
		return res, err
	}
	res.Toolchain = tc
	s.logf("toolchain %s found in %s", family, tc.BinDir)
	s.observer().ToolchainFound(tc)

	if opts.Native {
		if err := s.runNative(ctx, opts, &res); err != nil {
			return res, err
		}
	}

	if opts.Wipe {
		if err := s.remove(opts.BuildDir, &res); err != nil {
			return res, err
		}
	}

	resolver := &crossfile.Resolver{
		Client:     s.Client,
		Repository: opts.Repository,
		Dest:       opts.CrossFilesDir(),
		Jobs:       opts.Jobs,
		Reporter:   s.Reporter,
	}
	paths, err := resolver.Resolve(ctx, opts.CrossFiles)
	if err != nil {
		return res, err
	}
	res.CrossFiles = paths
	s.logf("resolved %d cross files into %s", len(paths), opts.CrossFilesDir())

	args := crossfile.LinkArgs(family, tc.Version, crossfile.LinkOptions{
		LinkScript: opts.LinkScript,
		OutputMap:  opts.OutputMap,
		BuildDir:   opts.BuildDir,
	})
	patch, err := crossfile.PatchFile(paths[0], tc.RootSlash(), args)
	if err != nil {
		return res, err
	}
	res.Patch = patch
	if missing := patch.Missing(); len(missing) > 0 {
		s.logf("%s: markers not found: %v", paths[0], missing)
	}
	s.observer().Patched(paths[0], patch)

	inv := meson.Invocation{
		Tool:        opts.MesonTool,
		BuildDir:    opts.BuildDir,
		CrossFiles:  slashPaths(paths),
		Reconfigure: opts.Reconfigure,
		Extra:       opts.Extra,
	}
	if err := s.run(ctx, inv); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Setup) runNative(ctx context.Context, opts Options, res *Result) error {
	dir := opts.NativeBuildDir()
	if opts.Wipe {
		if err := s.remove(dir, res); err != nil {
			return err
		}
	}
	inv := meson.Invocation{
		Tool:     opts.MesonTool,
		BuildDir: dir,
		VSEnv:    opts.VSEnv && opts.goos() == "windows",
	}
	if err := s.run(ctx, inv); err != nil {
		return fmt.Errorf("native setup: %w", err)
	}
	res.Native = true
	return nil
}

func (s *Setup) remove(dir string, res *Result) error {
	removed, err := meson.RemoveBuildDir(dir)
	if err != nil {
		return err
	}
	if removed {
		res.Removed = append(res.Removed, dir)
		s.logf("removed %s", dir)
		s.observer().Removed(dir)
	}
	return nil
}

func (s *Setup) run(ctx context.Context, inv meson.Invocation) error {
	s.observer().Running(inv)
	return s.Runner.Run(ctx, inv)
}

func (s *Setup) locate(ctx context.Context, opts toolchain.LocateOptions) (toolchain.Toolchain, error) {
	if s.Locate != nil {
		return s.Locate(ctx, opts)
	}
	return toolchain.Locate(ctx, opts)
}

func (s *Setup) observer() Observer {
	if s.Observer == nil {
		return NopObserver{}
	}
	return s.Observer
}

func (s *Setup) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// slashPaths renders cross file paths with forward slashes for meson.
func slashPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return out
}
