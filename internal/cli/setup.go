package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mcumeson/internal/config"
	"mcumeson/internal/crossfile"
	"mcumeson/internal/logx"
	"mcumeson/internal/meson"
	"mcumeson/internal/paths"
	"mcumeson/internal/setup"
)

const downloadTimeout = 2 * time.Minute

// setupFlags holds command-line overrides. Paths given here are relative to
// the working directory; paths from the config file are relative to the
// project root.
type setupFlags struct {
	BuildDir    string
	CrossFiles  []string
	LinkScript  string
	OutputMap   string
	ArmPath     string
	GCCPath     string
	Native      bool
	Wipe        bool
	Reconfigure bool
	Jobs        int
}

var setupFlagValues setupFlags

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup [flags] [-- meson-options...]",
		Short: "Locate the toolchain, patch cross files and run meson setup",
		Long: `Locate the ARM toolchain, fetch the configured cross files into
<build>/cross_files, patch the first one with the toolchain location and
link arguments, then run "meson setup". Arguments after "--" are passed
to meson unchanged.`,
		Args: cobra.ArbitraryArgs,
		RunE: runSetup,
	}

	f := cmd.Flags()
	f.StringVarP(&setupFlagValues.BuildDir, "build-dir", "b", "", "Build directory (default from config)")
	f.StringArrayVarP(&setupFlagValues.CrossFiles, "cross-file", "c", nil, "Cross file reference; repeat to replace the configured list")
	f.StringVar(&setupFlagValues.LinkScript, "link-script", "", "Linker script path")
	f.StringVar(&setupFlagValues.OutputMap, "output-map", "", "Linker map file name")
	f.StringVar(&setupFlagValues.ArmPath, "arm_path", "", "Path of the ARM toolchain (directory or its bin)")
	f.StringVar(&setupFlagValues.GCCPath, "gcc_path", "", "Path of the ARM toolchain")
	f.BoolVar(&setupFlagValues.Native, "native", false, "Set up a native build directory as well")
	f.BoolVar(&setupFlagValues.Wipe, "rm", false, "Remove the build directories before setup")
	f.BoolVar(&setupFlagValues.Reconfigure, "reconfigure", false, "Pass --reconfigure to meson")
	f.IntVarP(&setupFlagValues.Jobs, "jobs", "j", 0, "Concurrent cross file downloads (default from config)")
	_ = f.MarkDeprecated("gcc_path", "use --arm_path instead")

	return cmd
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	extra, err := mesonArgs(cmd, args)
	if err != nil {
		return err
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}

	logger, closer, err := logx.New(pp, "setup")
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := buildSetupOptions(pp, cfg, setupFlagValues, extra)
	opts.PathEnv = os.Getenv("PATH")
	logger.Printf("mcumeson setup: project=%s build=%s cross_files=%v", pp.Root, opts.BuildDir, opts.CrossFiles)

	// Keep stdout clean for the JSON document.
	out := cmd.OutOrStdout()
	if outputJSON {
		out = cmd.ErrOrStderr()
	}

	s := &setup.Setup{
		Runner: meson.Runner{
			Stdout: out,
			Stderr: cmd.ErrOrStderr(),
			Logger: logger,
		},
		Client:   &http.Client{Timeout: downloadTimeout},
		Reporter: newLineReporter(out),
		Observer: lineObserver{out: out},
		Logger:   logger,
	}

	result, err := s.Run(ctx, opts)
	if err != nil {
		logger.Printf("setup failed: %v", err)
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode setup json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
	return nil
}

// mesonArgs returns the arguments given after "--". Anything before it is
// rejected so typos in flags are not silently handed to meson.
func mesonArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		dash = len(args)
	}
	if dash > 0 {
		return nil, fmt.Errorf("unexpected argument %q; pass meson options after --", args[0])
	}
	return args[dash:], nil
}

// buildSetupOptions merges the config file with command-line overrides.
func buildSetupOptions(pp paths.ProjectPaths, cfg config.Config, flags setupFlags, extra []string) setup.Options {
	opts := setup.Options{
		BuildDir:    pp.ProjectPath(cfg.BuildDir),
		LinkScript:  pp.ProjectPath(cfg.LinkScript),
		OutputMap:   cfg.OutputMap,
		Native:      flags.Native,
		Wipe:        flags.Wipe,
		Reconfigure: flags.Reconfigure,
		VSEnv:       cfg.Meson.VSEnvValue(),
		Jobs:        cfg.Templates.Jobs,
		Repository:  crossfile.Repository{Base: cfg.Templates.Repository},
		MesonTool:   cfg.Meson.Command,
	}

	if flags.BuildDir != "" {
		opts.BuildDir = flags.BuildDir
	}

	if len(flags.CrossFiles) > 0 {
		opts.CrossFiles = append([]string(nil), flags.CrossFiles...)
	} else {
		for _, ref := range cfg.CrossFiles {
			opts.CrossFiles = append(opts.CrossFiles, pp.LocalReference(ref))
		}
	}

	if flags.LinkScript != "" {
		opts.LinkScript = flags.LinkScript
	}
	if flags.OutputMap != "" {
		opts.OutputMap = flags.OutputMap
	}

	switch {
	case flags.ArmPath != "":
		opts.ToolchainPath = flags.ArmPath
	case flags.GCCPath != "":
		opts.ToolchainPath = flags.GCCPath
	default:
		opts.ToolchainPath = pp.ProjectPath(cfg.Toolchain.Path)
	}

	if flags.Jobs > 0 {
		opts.Jobs = flags.Jobs
	}

	opts.Extra = append(opts.Extra, cfg.Meson.Args...)
	opts.Extra = append(opts.Extra, extra...)
	return opts
}
