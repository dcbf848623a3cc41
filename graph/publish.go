// Package graph provides the ingest payload and publish helpers upstream
// producers use to hand resolved entities to the graph writer.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/semgraph/identity"
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/kg"
)

// EntityURI derives the canonical URI for a labeled entity. Producers call
// this before publishing so every ingestion of the same source data lands
// on the same subject.
func EntityURI(scope, entityType, label string, keys []identity.Key) string {
	return kg.EntityNamespace + identity.Resolve(label, entityType, scope, keys)
}

// GraphIngestSubject is the JetStream subject the graph writer consumes.
const GraphIngestSubject = "graph.ingest.entity"

// EntityIngestMessage is the wire format for graph ingestion.
type EntityIngestMessage struct {
	ID             string           `json:"id"`
	Triples        []message.Triple `json:"triples"`
	SourceDocument string           `json:"source_document,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// PublishEntity publishes one entity's triples for audited ingestion.
// Producers resolve the entity identifier deterministically (identity
// package) before publishing, so repeated publications of the same source
// data converge on the same subject.
func PublishEntity(ctx context.Context, nc *natsclient.Client, entityID, sourceDocumentURI string, triples []message.Triple) error {
	if nc == nil {
		return nil // Skip publishing if no NATS client (graceful degradation)
	}

	msg := EntityIngestMessage{
		ID:             entityID,
		Triples:        triples,
		SourceDocument: sourceDocumentURI,
		UpdatedAt:      time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal entity %s: %w", entityID, err)
	}

	if err := nc.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish entity %s: %w", entityID, err)
	}

	return nil
}

// MessageTriples converts codec triples into the wire triple form, tagging
// URI references with their serialized datatype hint so the consumer can
// reconstruct the tagged object variant.
func MessageTriples(triples []rdf.Triple, source string, at time.Time) []message.Triple {
	out := make([]message.Triple, 0, len(triples))
	for _, t := range triples {
		mt := message.Triple{
			Subject:    t.Subject,
			Predicate:  t.Predicate,
			Object:     t.Object.Value(),
			Source:     source,
			Timestamp:  at,
			Confidence: 1.0,
		}
		switch obj := t.Object.(type) {
		case rdf.URIRef:
			mt.Datatype = ObjectKindURIRef
		case rdf.Literal:
			mt.Datatype = obj.Datatype
		}
		out = append(out, mt)
	}
	return out
}

// ObjectKindURIRef marks a wire triple whose object is an entity/resource
// reference rather than a literal.
const ObjectKindURIRef = "uri-ref"

// CodecTriples reverses MessageTriples: wire triples become tagged codec
// triples. Non-string objects are rendered with fmt, matching how the wire
// format carries JSON scalars.
func CodecTriples(entityID string, triples []message.Triple) []rdf.Triple {
	out := make([]rdf.Triple, 0, len(triples))
	for _, mt := range triples {
		subject := mt.Subject
		if subject == "" {
			subject = entityID
		}

		value := fmt.Sprintf("%v", mt.Object)
		if mt.Datatype == ObjectKindURIRef {
			out = append(out, rdf.NewRef(subject, mt.Predicate, value))
			continue
		}
		out = append(out, rdf.Triple{
			Subject:   subject,
			Predicate: mt.Predicate,
			Object:    rdf.Literal{Val: value, Datatype: mt.Datatype},
		})
	}
	return out
}
