// Package commit sequences an audited ingestion of graph facts: optional
// pre-commit audit, conditional stale-data removal, then batched insertion.
//
// Within one commit every step is strictly sequential; each depends on the
// side effects of the previous one. Across commits there is no built-in
// mutual exclusion — callers serialize overlapping commits themselves, e.g.
// with the lock package's per-(scope, document) advisory lock.
package commit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/semgraph/diff"
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/store"
	"github.com/c360studio/semgraph/vocabulary/kg"
)

// Batch-size limits imposed by the store's query and payload constraints.
// These are correctness constraints, not throughput tuning.
const (
	// DefaultQueryBatchSize bounds entity identifiers per existing-facts
	// query.
	DefaultQueryBatchSize = 100

	// DefaultDeleteBatchSize bounds entity identifiers per stale-data
	// deletion update.
	DefaultDeleteBatchSize = 100

	// DefaultInsertBatchSize bounds triples per insertion payload.
	DefaultInsertBatchSize = 10000
)

// Request describes one commit: the target scope, the full incoming triple
// set, and the optional source document. An absent SourceDocumentURI skips
// auditing entirely (the bulk/legacy path).
type Request struct {
	Scope             Scope
	Triples           []rdf.Triple
	SourceDocumentURI string
}

// Result reports a completed commit. AuditEventCount is the number of
// change events the audit recorded; zero on the bulk path and on first
// ingestion.
type Result struct {
	ScopeRef        string
	TripleCount     int
	AuditEventCount int
}

// Preview is the outcome of a dry-run audit.
type Preview struct {
	ChangeCount        int
	EntityURIsToDelete []string
}

// Committer orchestrates audited commits against a batched store client.
type Committer struct {
	store    store.Client
	logger   *slog.Logger
	prefixes map[string]string

	queryBatchSize  int
	deleteBatchSize int
	insertBatchSize int
}

// CommitterOption configures a Committer.
type CommitterOption func(*Committer)

// WithLogger sets the committer logger.
func WithLogger(logger *slog.Logger) CommitterOption {
	return func(c *Committer) { c.logger = logger }
}

// WithBatchSizes overrides the query, delete, and insert batch limits.
// Zero values keep the defaults.
func WithBatchSizes(query, del, insert int) CommitterOption {
	return func(c *Committer) {
		if query > 0 {
			c.queryBatchSize = query
		}
		if del > 0 {
			c.deleteBatchSize = del
		}
		if insert > 0 {
			c.insertBatchSize = insert
		}
	}
}

// NewCommitter creates a Committer over the given store client.
func NewCommitter(st store.Client, opts ...CommitterOption) *Committer {
	c := &Committer{
		store:           st,
		logger:          slog.Default(),
		prefixes:        kg.Prefixes(),
		queryBatchSize:  DefaultQueryBatchSize,
		deleteBatchSize: DefaultDeleteBatchSize,
		insertBatchSize: DefaultInsertBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit runs the full pipeline: audit when a source document is present,
// stale-data deletion when the audit found owned entities, then batched
// insertion of the incoming triples.
//
// The audit aborts the commit before any primary-data mutation. Delete and
// insert failures surface with their batch index; batches already applied
// are not rolled back.
func (c *Committer) Commit(ctx context.Context, req Request) (*Result, error) {
	if len(req.Triples) == 0 {
		return nil, ErrEmptyCommit
	}
	if err := req.Scope.Validate(); err != nil {
		return nil, err
	}

	var entityURIsToDelete []string
	auditEvents := 0
	if req.SourceDocumentURI != "" {
		changes, toDelete, err := c.computeDiff(ctx, req)
		if err != nil {
			return nil, &AuditError{Err: err}
		}
		if len(changes) > 0 {
			events := diff.GenerateChangeEvents(changes, req.Scope.Ref(), req.SourceDocumentURI)
			if err := c.writeAuditEvents(ctx, req.Scope, events); err != nil {
				return nil, &AuditError{Err: err}
			}
		}
		entityURIsToDelete = toDelete
		auditEvents = len(changes)
	}

	if len(entityURIsToDelete) > 0 {
		if err := c.deleteStale(ctx, req.Scope, entityURIsToDelete); err != nil {
			return nil, err
		}
	}

	if err := c.insertNew(ctx, req.Scope, req.Triples); err != nil {
		return nil, err
	}

	c.logger.Info("commit complete",
		"scope", req.Scope.Ref(),
		"triples", len(req.Triples),
		"stale_entities", len(entityURIsToDelete),
		"source_document", req.SourceDocumentURI)

	return &Result{
		ScopeRef:        req.Scope.Ref(),
		TripleCount:     len(req.Triples),
		AuditEventCount: auditEvents,
	}, nil
}

// PreCommitAudit runs the audit phase without mutating anything: it fetches
// existing facts for the candidate entities, diffs them against the incoming
// triples, and reports what a commit would record and delete. Used for
// dry-run previews.
func (c *Committer) PreCommitAudit(ctx context.Context, scope Scope, triples []rdf.Triple, sourceDocumentURI string) (*Preview, error) {
	changes, toDelete, err := c.computeDiff(ctx, Request{
		Scope:             scope,
		Triples:           triples,
		SourceDocumentURI: sourceDocumentURI,
	})
	if err != nil {
		return nil, &AuditError{Err: err}
	}
	return &Preview{ChangeCount: len(changes), EntityURIsToDelete: toDelete}, nil
}

// computeDiff fetches existing facts for the commit's candidate entities and
// diffs them against the incoming grouping.
func (c *Committer) computeDiff(ctx context.Context, req Request) ([]diff.Change, []string, error) {
	candidates := candidateEntities(req.Triples)
	if len(candidates) == 0 {
		c.logger.Debug("audit skipped: no candidate instance entities",
			"scope", req.Scope.Ref())
		return nil, nil, nil
	}

	existing, err := c.fetchExistingFacts(ctx, req.Scope.Dataset(), candidates)
	if err != nil {
		return nil, nil, err
	}
	if len(existing) == 0 {
		// First ingestion of these entities: suppress the INSERT flood.
		c.logger.Debug("audit skipped: no existing facts, first-time ingestion",
			"scope", req.Scope.Ref(),
			"candidates", len(candidates))
		return nil, nil, nil
	}

	incoming := incomingByCandidate(req.Triples, candidates)
	result := diff.Compute(existing, incoming, req.SourceDocumentURI)
	return result.Changes, result.EntityURIsToDelete, nil
}

// writeAuditEvents persists the change events to the audit scope.
func (c *Committer) writeAuditEvents(ctx context.Context, scope Scope, events []rdf.Triple) error {
	payload := rdf.SerializeBatch(events, c.prefixes)
	if err := c.store.Insert(ctx, scope.AuditDataset(), []byte(payload), rdf.ContentType); err != nil {
		return fmt.Errorf("write audit events: %w", err)
	}
	c.logger.Info("audit events written",
		"scope", scope.Ref(),
		"facts", len(events))
	return nil
}

// deleteStale removes all facts of the stale entities in bounded batches.
func (c *Committer) deleteStale(ctx context.Context, scope Scope, entityURIs []string) error {
	for batch := 0; batch*c.deleteBatchSize < len(entityURIs); batch++ {
		start := batch * c.deleteBatchSize
		end := min(start+c.deleteBatchSize, len(entityURIs))

		update := store.DeleteEntitiesUpdate(entityURIs[start:end])
		if err := c.store.Update(ctx, scope.Dataset(), update); err != nil {
			return &DeleteBatchError{Batch: batch, Err: err}
		}
		c.logger.Debug("stale entities deleted",
			"scope", scope.Ref(),
			"batch", batch,
			"entities", end-start)
	}
	return nil
}

// insertNew writes the incoming triples in bounded batches, each with the
// shared namespace-prefix header.
func (c *Committer) insertNew(ctx context.Context, scope Scope, triples []rdf.Triple) error {
	for batch := 0; batch*c.insertBatchSize < len(triples); batch++ {
		start := batch * c.insertBatchSize
		end := min(start+c.insertBatchSize, len(triples))

		payload := rdf.SerializeBatch(triples[start:end], c.prefixes)
		if err := c.store.Insert(ctx, scope.Dataset(), []byte(payload), rdf.ContentType); err != nil {
			return &InsertBatchError{Batch: batch, Err: err}
		}
		c.logger.Debug("triples inserted",
			"scope", scope.Ref(),
			"batch", batch,
			"triples", end-start)
	}
	return nil
}

// fetchExistingFacts queries the store for every fact of the candidate
// entities, in bounded VALUES batches, grouped by entity.
func (c *Committer) fetchExistingFacts(ctx context.Context, dataset string, entityURIs []string) (map[string][]rdf.Triple, error) {
	existing := make(map[string][]rdf.Triple)
	for start := 0; start < len(entityURIs); start += c.queryBatchSize {
		end := min(start+c.queryBatchSize, len(entityURIs))

		rows, err := c.store.Query(ctx, dataset, store.EntityFactsQuery(entityURIs[start:end]))
		if err != nil {
			return nil, fmt.Errorf("query existing facts: %w", err)
		}
		for _, row := range rows {
			triple, ok := rowToTriple(row)
			if !ok {
				c.logger.Warn("skipping unusable store row", "row", fmt.Sprintf("%v", row))
				continue
			}
			existing[triple.Subject] = append(existing[triple.Subject], triple)
		}
	}
	return existing, nil
}

// rowToTriple converts a ?s ?p ?o result row into a triple.
func rowToTriple(row store.Row) (rdf.Triple, bool) {
	s, okS := row["s"]
	p, okP := row["p"]
	o, okO := row["o"]
	if !okS || !okP || !okO {
		return rdf.Triple{}, false
	}

	var object rdf.Object
	if o.Type == "uri" {
		object = rdf.URIRef{IRI: o.Value}
	} else {
		object = rdf.Literal{Val: o.Value, Datatype: o.Datatype}
	}
	return rdf.Triple{Subject: s.Value, Predicate: p.Value, Object: object}, true
}

// candidateEntities extracts the distinct subjects of the incoming triples,
// excluding subjects declared as schema-level resources (document wrappers,
// class and property declarations) rather than instance entities.
func candidateEntities(triples []rdf.Triple) []string {
	schemaLevel := make(map[string]struct{})
	for _, t := range triples {
		if t.Predicate == kg.RDFType && kg.IsSchemaLevelClass(t.Object.Value()) {
			schemaLevel[t.Subject] = struct{}{}
		}
	}

	var ordered []string
	seen := make(map[string]struct{})
	for _, t := range triples {
		if _, isSchema := schemaLevel[t.Subject]; isSchema {
			continue
		}
		if _, dup := seen[t.Subject]; dup {
			continue
		}
		seen[t.Subject] = struct{}{}
		ordered = append(ordered, t.Subject)
	}
	return ordered
}

// incomingByCandidate groups the incoming triples by subject, keeping only
// candidate entities so schema-level subjects never reach the diff.
func incomingByCandidate(triples []rdf.Triple, candidates []string) map[string][]rdf.Triple {
	keep := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		keep[c] = struct{}{}
	}
	grouped := make(map[string][]rdf.Triple, len(candidates))
	for _, t := range triples {
		if _, ok := keep[t.Subject]; ok {
			grouped[t.Subject] = append(grouped[t.Subject], t)
		}
	}
	return grouped
}
