package crossfile

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Status values reported for each reference.
const (
	StatusCopying     = "copying"
	StatusDownloading = "downloading"
	StatusCopied      = "copied"
	StatusDownloaded  = "downloaded"
	StatusError       = "error"
)

// Result describes one materialized reference.
type Result struct {
	Reference Reference `json:"-"`
	Raw       string    `json:"reference"`
	Path      string    `json:"path,omitempty"`
	Status    string    `json:"status"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Reporter receives per-reference progress. Implementations must be safe
// for concurrent use when Jobs > 1.
type Reporter interface {
	Start(ref Reference, status string)
	Complete(res Result)
}

// FetchError reports a reference that could not be materialized.
type FetchError struct {
	Ref Reference
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("obtain %s: %v", e.Ref.Raw, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Resolver obtains local copies of cross file references.
type Resolver struct {
	Client     *http.Client
	Repository Repository
	// Dest receives every resolved file.
	Dest string
	// Jobs bounds concurrent transfers; values below 1 mean sequential.
	Jobs     int
	Reporter Reporter
}

// Resolve returns one local path per reference, in input order. The first
// failure aborts the operation; files already written are left in place.
func (r *Resolver) Resolve(ctx context.Context, refs []string) ([]string, error) {
	results, err := r.ResolveResults(ctx, refs)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(results))
	for i, res := range results {
		paths[i] = res.Path
	}
	return paths, nil
}

// ResolveResults is Resolve with per-reference details.
func (r *Resolver) ResolveResults(ctx context.Context, refs []string) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parsed, err := r.Repository.ParseAll(refs)
	if err != nil {
		return nil, err
	}
	if r.Dest == "" {
		return nil, fmt.Errorf("resolve cross files: destination directory not set")
	}
	if err := os.MkdirAll(r.Dest, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", r.Dest, err)
	}

	results := make([]Result, len(parsed))
	g, gctx := errgroup.WithContext(ctx)
	jobs := r.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, ref := range parsed {
		i, ref := i, ref
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := r.resolveOne(gctx, ref)
			results[i] = res
			if err != nil {
				return &FetchError{Ref: ref, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Resolver) resolveOne(ctx context.Context, ref Reference) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Reference: ref, Raw: ref.Raw, Status: StatusError, Error: err.Error()}, err
	}

	dest := filepath.Join(r.Dest, ref.Name)
	res := Result{Reference: ref, Raw: ref.Raw, Path: dest}

	var (
		size int64
		err  error
	)
	if ref.Remote() {
		r.start(ref, StatusDownloading)
		size, err = downloadFile(ctx, r.client(), dest, ref.Location)
		res.Status = StatusDownloaded
	} else {
		r.start(ref, StatusCopying)
		size, err = copyInto(ref.Location, dest)
		res.Status = StatusCopied
	}
	if err != nil {
		res.Status = StatusError
		res.Error = err.Error()
		r.complete(res)
		return res, err
	}
	res.SizeBytes = size
	r.complete(res)
	return res, nil
}

func (r *Resolver) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return http.DefaultClient
}

func (r *Resolver) start(ref Reference, status string) {
	if r.Reporter != nil {
		r.Reporter.Start(ref, status)
	}
}

func (r *Resolver) complete(res Result) {
	if r.Reporter != nil {
		r.Reporter.Complete(res)
	}
}
