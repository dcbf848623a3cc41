package ingest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgraph/commit"
	"github.com/c360studio/semgraph/store"
)

// fakeStore records operations; queries always return no existing facts so
// commits take the first-ingestion path.
type fakeStore struct {
	mu      sync.Mutex
	inserts []string // datasets, in call order
	queries int
}

func (f *fakeStore) Query(_ context.Context, _ string, _ string) ([]store.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	return nil, nil
}

func (f *fakeStore) Update(_ context.Context, _ string, _ string) error {
	return nil
}

func (f *fakeStore) Insert(_ context.Context, dataset string, _ []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, dataset)
	return nil
}

func TestRunnerIngestPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orgs.nt", `<http://ex.org/e1> <http://ex.org/name> "Acme" .
`)
	writeFile(t, dir, "people.nt", `<http://ex.org/p1> <http://ex.org/name> "Ada" .
bad line
`)

	st := &fakeStore{}
	runner := NewRunner(
		commit.NewCommitter(st),
		commit.Scope{Tenant: "acme", Workspace: "main"},
		WithBaseDir(dir),
	)

	summary, err := runner.IngestPatterns(context.Background(), []string{dir + "/*.nt"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 2, summary.Triples)
	assert.Equal(t, 1, summary.Skipped)

	// One primary insert per file; first ingestion writes no audit events.
	assert.Equal(t, []string{"acme-main", "acme-main"}, st.inserts)
	assert.Equal(t, 2, st.queries)
}

func TestRunnerIngestEmptyFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.nt", "# only a comment\n")
	writeFile(t, dir, "facts.nt", `<http://ex.org/e1> <http://ex.org/name> "Acme" .
`)

	st := &fakeStore{}
	runner := NewRunner(
		commit.NewCommitter(st),
		commit.Scope{Tenant: "acme", Workspace: "main"},
		WithBaseDir(dir),
	)

	summary, err := runner.IngestPatterns(context.Background(), []string{dir + "/*.nt"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)
}

func TestRunnerIngestNoMatches(t *testing.T) {
	st := &fakeStore{}
	runner := NewRunner(
		commit.NewCommitter(st),
		commit.Scope{Tenant: "acme", Workspace: "main"},
	)

	_, err := runner.IngestPatterns(context.Background(), []string{t.TempDir() + "/*.nt"})
	assert.Error(t, err)
}

func TestRunnerPreview(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orgs.nt", `<http://ex.org/e1> <http://ex.org/name> "Acme" .
`)

	st := &fakeStore{}
	runner := NewRunner(
		commit.NewCommitter(st),
		commit.Scope{Tenant: "acme", Workspace: "main"},
		WithBaseDir(dir),
	)

	previews, err := runner.Preview(context.Background(), []string{path})
	require.NoError(t, err)
	require.Contains(t, previews, path)

	// First ingestion: nothing to record, nothing to delete, and no writes.
	assert.Equal(t, 0, previews[path].ChangeCount)
	assert.Empty(t, previews[path].EntityURIsToDelete)
	assert.Empty(t, st.inserts)
}
