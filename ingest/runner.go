package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/semgraph/commit"
	"github.com/c360studio/semgraph/lock"
)

// Runner ingests fact files into one commit scope.
type Runner struct {
	committer *commit.Committer
	scope     commit.Scope
	baseDir   string
	logger    *slog.Logger
	locks     *lock.Manager
	owner     string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithBaseDir sets the directory fact-file paths are made relative to when
// deriving document URIs.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) { r.baseDir = dir }
}

// WithLockManager enables per-document advisory locking for commits.
func WithLockManager(locks *lock.Manager, owner string) RunnerOption {
	return func(r *Runner) {
		r.locks = locks
		r.owner = owner
	}
}

// NewRunner creates a Runner committing into the given scope.
func NewRunner(committer *commit.Committer, scope commit.Scope, opts ...RunnerOption) *Runner {
	r := &Runner{
		committer: committer,
		scope:     scope,
		logger:    slog.Default(),
		owner:     "ingest",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summary reports a completed ingestion run.
type Summary struct {
	Files   int
	Triples int
	Skipped int
}

// IngestPatterns resolves the glob patterns and commits every matched fact
// file. The first commit failure aborts the run; files already committed
// stay committed.
func (r *Runner) IngestPatterns(ctx context.Context, patterns []string) (*Summary, error) {
	files, err := ResolveFiles(patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no fact files matched %v", patterns)
	}

	summary := &Summary{}
	for _, path := range files {
		facts, err := r.IngestFile(ctx, path)
		if err != nil {
			if errors.Is(err, commit.ErrEmptyCommit) {
				r.logger.Warn("Skipping empty fact file", "path", path)
				continue
			}
			return summary, fmt.Errorf("ingest %s: %w", path, err)
		}
		summary.Files++
		summary.Triples += len(facts.Triples)
		summary.Skipped += facts.Skipped
	}

	r.logger.Info("ingestion complete",
		"scope", r.scope.Ref(),
		"files", summary.Files,
		"triples", summary.Triples,
		"skipped_lines", summary.Skipped)

	return summary, nil
}

// IngestFile loads and commits a single fact file.
func (r *Runner) IngestFile(ctx context.Context, path string) (*FileFacts, error) {
	facts, err := LoadFile(path, r.baseDir, r.logger)
	if err != nil {
		return nil, err
	}

	if r.locks != nil {
		held, err := r.locks.Acquire(ctx, r.scope.Ref(), facts.DocumentURI, r.owner)
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", facts.DocumentURI, err)
		}
		defer func() {
			if err := held.Release(ctx); err != nil {
				r.logger.Warn("Lock release failed",
					"document", facts.DocumentURI,
					"error", err)
			}
		}()
	}

	result, err := r.committer.Commit(ctx, commit.Request{
		Scope:             r.scope,
		Triples:           facts.Triples,
		SourceDocumentURI: facts.DocumentURI,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("fact file committed",
		"path", path,
		"document", facts.DocumentURI,
		"scope", result.ScopeRef,
		"triples", result.TripleCount,
		"skipped_lines", facts.Skipped)

	return facts, nil
}

// Preview runs the dry-run audit for every matched fact file without
// writing anything.
func (r *Runner) Preview(ctx context.Context, patterns []string) (map[string]*commit.Preview, error) {
	files, err := ResolveFiles(patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no fact files matched %v", patterns)
	}

	previews := make(map[string]*commit.Preview, len(files))
	for _, path := range files {
		facts, err := LoadFile(path, r.baseDir, r.logger)
		if err != nil {
			return nil, err
		}
		preview, err := r.committer.PreCommitAudit(ctx, r.scope, facts.Triples, facts.DocumentURI)
		if err != nil {
			return nil, fmt.Errorf("audit %s: %w", path, err)
		}
		previews[path] = preview
	}
	return previews, nil
}
