package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mcumeson/internal/config"
	"mcumeson/internal/crossfile"
	"mcumeson/internal/logx"
	"mcumeson/internal/paths"
	"mcumeson/internal/tui"
)

var (
	fetchBuildDir   string
	fetchCrossFiles []string
	fetchJobs       int
	fetchNoProgress bool
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download or copy cross files into the build directory without patching",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}

	cmd.Flags().StringVarP(&fetchBuildDir, "build-dir", "b", "", "Build directory (default from config)")
	cmd.Flags().StringArrayVarP(&fetchCrossFiles, "cross-file", "c", nil, "Cross file reference; repeat to replace the configured list")
	cmd.Flags().IntVarP(&fetchJobs, "jobs", "j", 0, "Concurrent downloads (default from config)")
	cmd.Flags().BoolVar(&fetchNoProgress, "no-progress", false, "Disable interactive progress output")

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}

	logger, closer, err := logx.New(pp, "fetch")
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := buildSetupOptions(pp, cfg, setupFlags{
		BuildDir:   fetchBuildDir,
		CrossFiles: fetchCrossFiles,
		Jobs:       fetchJobs,
	}, nil)

	refs, err := opts.Repository.ParseAll(opts.CrossFiles)
	if err != nil {
		return err
	}

	resolver := &crossfile.Resolver{
		Client:     &http.Client{Timeout: downloadTimeout},
		Repository: opts.Repository,
		Dest:       opts.CrossFilesDir(),
		Jobs:       opts.Jobs,
	}
	logger.Printf("mcumeson fetch: dest=%s refs=%v jobs=%d", resolver.Dest, opts.CrossFiles, resolver.Jobs)

	var results []crossfile.Result
	switch tui.DetectMode(cmd.OutOrStdout(), fetchNoProgress, outputJSON) {
	case tui.ModeTUI:
		model := tui.NewCrossFileModel("Fetching cross files into "+resolver.Dest, refs)
		err = tui.RunWithWork(ctx, cmd.OutOrStdout(), model, func(ctx context.Context, send func(tea.Msg)) error {
			resolver.Reporter = tui.NewCrossFileReporter(send)
			var workErr error
			results, workErr = resolver.ResolveResults(ctx, opts.CrossFiles)
			return workErr
		})
		if err != nil {
			logger.Printf("fetch failed: %v", err)
			return err
		}
		printFetchSummary(cmd.OutOrStdout(), countFetchResults(results))
		return nil
	case tui.ModeJSON:
		results, err = resolver.ResolveResults(ctx, opts.CrossFiles)
		if err != nil {
			logger.Printf("fetch failed: %v", err)
			return err
		}
		return writeFetchJSON(cmd, resolver.Dest, results)
	default:
		results, err = resolver.ResolveResults(ctx, opts.CrossFiles)
		if err != nil {
			logger.Printf("fetch failed: %v", err)
			return err
		}
		writeFetchTable(cmd.OutOrStdout(), resolver.Dest, results)
		return nil
	}
}

type fetchCounts struct {
	Downloaded int   `json:"downloaded"`
	Copied     int   `json:"copied"`
	Bytes      int64 `json:"bytes"`
}

func countFetchResults(results []crossfile.Result) fetchCounts {
	var counts fetchCounts
	for _, res := range results {
		switch res.Status {
		case crossfile.StatusDownloaded:
			counts.Downloaded++
		case crossfile.StatusCopied:
			counts.Copied++
		}
		counts.Bytes += res.SizeBytes
	}
	return counts
}

func writeFetchJSON(cmd *cobra.Command, dest string, results []crossfile.Result) error {
	payload := struct {
		Dest    string             `json:"dest"`
		Files   []crossfile.Result `json:"files"`
		Summary fetchCounts        `json:"summary"`
	}{
		Dest:    dest,
		Files:   results,
		Summary: countFetchResults(results),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fetch json: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func writeFetchTable(out io.Writer, dest string, results []crossfile.Result) {
	fmt.Fprintf(out, "Destination: %s\n", dest)

	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSTATUS\tSIZE\tSOURCE")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			res.Reference.Name,
			res.Status,
			humanSize(res.SizeBytes),
			res.Reference.Location,
		)
	}
	w.Flush()

	printFetchSummary(out, countFetchResults(results))
}

func printFetchSummary(out io.Writer, counts fetchCounts) {
	fmt.Fprintf(out, "Summary: downloaded=%d copied=%d total=%s\n", counts.Downloaded, counts.Copied, humanSize(counts.Bytes))
}
