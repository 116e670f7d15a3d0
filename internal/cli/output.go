package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/docker/go-units"

	"mcumeson/internal/crossfile"
	"mcumeson/internal/meson"
	"mcumeson/internal/setup"
	"mcumeson/internal/toolchain"
	"mcumeson/internal/tui"
)

// lineReporter prints one line per finished cross file.
type lineReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func newLineReporter(out io.Writer) *lineReporter {
	return &lineReporter{out: out}
}

func (r *lineReporter) Start(crossfile.Reference, string) {}

func (r *lineReporter) Complete(res crossfile.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Status == crossfile.StatusError {
		fmt.Fprintf(r.out, "%s %s: %s\n", tui.Failure.Render("Failed:"), res.Raw, res.Error)
		return
	}
	label := "Copied:"
	if res.Status == crossfile.StatusDownloaded {
		label = "Downloaded:"
	}
	fmt.Fprintf(r.out, "%s %s (%s)\n", tui.Info.Render(label), res.Path, humanSize(res.SizeBytes))
}

// lineObserver prints setup progress in the style of the original helper:
// "Found:", "Removed:", "Run:" and warnings for unpatched markers.
type lineObserver struct {
	out io.Writer
}

var _ setup.Observer = lineObserver{}

func (o lineObserver) ToolchainFound(tc toolchain.Toolchain) {
	fmt.Fprintf(o.out, "%s %s\n", tui.Success.Render("Found:"), tc.Compiler())
}

func (o lineObserver) Removed(dir string) {
	fmt.Fprintf(o.out, "%s %s\n", tui.Info.Render("Removed:"), dir)
}

func (o lineObserver) Running(inv meson.Invocation) {
	fmt.Fprintf(o.out, "%s %s\n", tui.Success.Render("Run:"), inv.String())
}

func (o lineObserver) Patched(path string, res crossfile.PatchResult) {
	for _, marker := range res.Missing() {
		fmt.Fprintf(o.out, "%s %s has no %q entry, left unchanged\n", tui.Warning.Render("Warning:"), path, marker)
	}
}

func humanSize(size int64) string {
	if size <= 0 {
		return "-"
	}
	return units.HumanSize(float64(size))
}
