package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/subframe7536/yaak/log"
	"github.com/subframe7536/yaak/model"
	"github.com/subframe7536/yaak/render"
)

// Render renders every request found in the given model files.
type Render struct {
	Files  []string `arg:"" help:"Model files or glob patterns (default: source files)" name:"file" optional:""`
	Output string   `default:"yaml" enum:"yaml,json" help:"Output format (${enum})" short:"o"`
	Silent bool     `help:"Render missing variables and failed functions as empty text"`
	Jobs   int      `help:"Maximum number of requests rendered at once (0: number of CPUs)" short:"j"`

	out io.Writer
}

// job is one request together with the environments it renders against.
type job struct {
	file    string
	request model.Model
	chain   []model.Environment
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	jobs, err := r.jobs(ctx, s)
	if err != nil {
		return err
	}

	docs, err := r.render(ctx, s, jobs)
	if err != nil {
		return err
	}

	w := r.out
	if w == nil {
		w = os.Stdout
	}

	return encodeDocuments(w, r.Output, docs)
}

func (r *Render) jobs(ctx context.Context, s *session) ([]job, error) {
	if len(r.Files) == 0 {
		src, err := input(ctx, "")
		if err != nil {
			return nil, err
		}

		models, err := model.Decode([]byte(src))
		if err != nil {
			return nil, err
		}

		return appendJobs(nil, stdinSource, models, s), nil
	}

	files, err := expand(r.Files)
	if err != nil {
		return nil, err
	}

	var jobs []job

	for _, f := range files {
		models, err := model.LoadFile(f)
		if err != nil {
			return nil, err
		}

		jobs = appendJobs(jobs, f, models, s)
	}

	return jobs, nil
}

func appendJobs(jobs []job, file string, models []model.Model, s *session) []job {
	chain := s.with(model.Environments(models))

	for _, req := range model.Requests(models) {
		jobs = append(jobs, job{file: file, request: req, chain: chain})
	}

	return jobs
}

// expand resolves glob patterns into a list of unique file paths in the
// order the patterns were given.
func expand(patterns []string) ([]string, error) {
	var (
		files []string
		seen  = make(map[string]struct{})
	)

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, ErrNoFiles.Wrapf("%s", pattern).Wrap(err)
		}

		if len(matches) == 0 {
			return nil, ErrNoFiles.Wrapf("%s", pattern)
		}

		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}

			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	return files, nil
}

func (r *Render) render(ctx context.Context, s *session, jobs []job) ([]any, error) {
	limit := r.Jobs
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	docs := make([]any, len(jobs))
	opts := renderOptions(r.Silent)
	cb := s.callback()

	for i, j := range jobs {
		g.Go(func() error {
			out, err := render.Request(ctx, j.request, j.chain, cb, opts)
			if err != nil {
				return ErrRender.Wrapf("%s (%s)", j.file, j.request.ModelName()).Wrap(err)
			}

			docs[i] = out

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "rendered requests",
		slog.Int("count", len(docs)),
		slog.Int("jobs", limit),
	)

	return docs, nil
}
