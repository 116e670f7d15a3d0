package toolchain

import (
	"context"
	"errors"
	"path/filepath"
	"time"
)

// MesonTool is the build-system generator probed alongside the compilers.
const MesonTool = "meson"

// Status captures availability and version details for an external tool.
type Status struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// Probe reports every known compiler family plus meson as found on pathEnv.
// override, when set, is used for the compilers instead of the search path.
func Probe(ctx context.Context, pathEnv, override string) []Status {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	var result []Status
	for _, family := range Families() {
		result = append(result, probeCompiler(ctx, family, pathEnv, override))
	}
	result = append(result, probeExecutable(ctx, MesonTool, executableName(MesonTool), pathEnv))
	return result
}

func probeCompiler(ctx context.Context, family Family, pathEnv, override string) Status {
	tc, err := Locate(ctx, LocateOptions{Family: family, Override: override, PathEnv: pathEnv})
	status := Status{Name: family.Command()}
	if tc.BinDir != "" {
		status.Path = tc.Compiler()
		status.Available = true
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			status.Error = "not found"
		} else {
			status.Error = err.Error()
		}
		return status
	}
	status.Version = normalizeVersionLine(family, tc.Version)
	return status
}

func probeExecutable(ctx context.Context, name, exe, pathEnv string) Status {
	dir, err := Search(pathEnv, exe)
	if err != nil {
		return Status{Name: name, Error: "not found"}
	}
	path := filepath.Join(dir, exe)
	output, err := QueryVersion(ctx, path)
	if err != nil {
		return Status{Name: name, Path: path, Available: true, Error: err.Error()}
	}
	return Status{Name: name, Path: path, Version: VersionLine(output), Available: true}
}

func normalizeVersionLine(family Family, output string) string {
	if family == FamilyGCC {
		if version, ok := ParseGCCVersion(output); ok {
			return version
		}
	}
	return VersionLine(output)
}
