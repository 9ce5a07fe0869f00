// Package pipeline drives one document mutation end to end: extract content
// from a raw model response, dispatch the configured output mode, merge, and
// summarize what changed. Every component it calls is a pure function over
// in-memory strings, so independent requests can run concurrently.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"inkfold/internal/article"
	"inkfold/internal/diff"
	"inkfold/internal/extract"
	"inkfold/internal/logging"
	"inkfold/internal/merge"
	"inkfold/internal/patch"
)

// Request is one pipeline invocation.
type Request struct {
	// RunID correlates logs and audit records; assigned when empty.
	RunID string

	// Article is the base document being mutated.
	Article article.Article

	// Mode selects the output-mode strategy.
	Mode merge.Mode

	// RawResponse is the untrusted model output.
	RawResponse string

	// Parsed optionally carries an already-decoded response object.
	Parsed map[string]interface{}
}

// Outcome reports one finished run. A rejected outcome always carries the
// unmodified base article.
type Outcome struct {
	RunID    string
	Article  article.Article
	Rejected bool
	Reason   string

	// Strategy is the extraction strategy that recovered the content.
	Strategy string

	// Adjustments records structural patch relocations.
	Adjustments []patch.Adjustment

	// Applied, Skipped, and Deduped report text replacements: applied
	// finds, unmatched finds, and finds dropped because their URL was
	// already introduced by an earlier replacement.
	Applied []string
	Skipped []string
	Deduped []string

	// LinesAdded and LinesRemoved summarize the accepted edit.
	LinesAdded   int
	LinesRemoved int

	Duration time.Duration
}

// Runner executes pipeline requests with fixed options.
type Runner struct {
	MergeOptions merge.Options
}

// NewRunner returns a Runner with the given merge options.
func NewRunner(opts merge.Options) *Runner {
	return &Runner{MergeOptions: opts}
}

// Run executes one request. Failures are reported in the Outcome, never as
// an error: a batch must be able to continue after one document fails.
func (r *Runner) Run(ctx context.Context, req Request) Outcome {
	start := time.Now()
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	log := logging.Get(logging.CategoryPipeline)

	out := Outcome{RunID: req.RunID, Article: req.Article}
	if err := ctx.Err(); err != nil {
		out.Rejected = true
		out.Reason = "canceled: " + err.Error()
		return out
	}

	var input interface{} = req.RawResponse
	if req.Parsed != nil {
		input = map[string]interface{}(req.Parsed)
	}
	ext := extract.Extract(input, req.RawResponse)
	out.Strategy = ext.Strategy

	// Patch, text-replace, and meta modes carry their payload in marker,
	// replacement, or metadata form and reject on their own terms; the
	// other modes need a successfully recovered body.
	if !ext.Success && req.Mode.NeedsBody() {
		log.Warn("run=%s extraction exhausted, refusing to merge", req.RunID)
		out.Rejected = true
		out.Reason = "extraction failed: raw response preserved for inspection"
		out.Duration = time.Since(start)
		return out
	}
	logging.Get(logging.CategoryExtract).Debug("run=%s strategy=%s", req.RunID, ext.Strategy)

	res := merge.Apply(req.Article, req.Mode, ext, r.MergeOptions)
	out.Article = res.Article
	out.Rejected = res.Rejected
	out.Reason = res.Reason
	out.Adjustments = res.Adjustments
	out.Applied = res.Applied
	out.Skipped = res.Skipped
	out.Deduped = res.Deduped

	if res.Rejected {
		logging.MergeLog("run=%s rejected: %s", req.RunID, res.Reason)
	} else {
		summary := diff.Compute(req.Article.Content, res.Article.Content)
		out.LinesAdded = summary.Added
		out.LinesRemoved = summary.Removed
		log.Info("run=%s mode=%s +%d -%d adjustments=%d",
			req.RunID, req.Mode, summary.Added, summary.Removed, len(res.Adjustments))
	}

	out.Duration = time.Since(start)
	return out
}

// RunBatch executes independent requests in parallel, bounded by
// concurrency. Outcomes are returned in request order; a rejected document
// never stops the rest of the batch.
func (r *Runner) RunBatch(ctx context.Context, reqs []Request, concurrency int) []Outcome {
	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]Outcome, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			outcomes[i] = r.Run(ctx, req)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return outcomes
}
