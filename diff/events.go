package diff

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/kg"
)

// GenerateChangeEvents materializes changes as append-only audit facts under
// the audit scope's namespace. The batch timestamp is captured once and
// reused for every event so all changes from one commit sort together.
func GenerateChangeEvents(changes []Change, auditScope, sourceDocumentURI string) []rdf.Triple {
	return GenerateChangeEventsAt(changes, auditScope, sourceDocumentURI, time.Now().UTC())
}

// GenerateChangeEventsAt is GenerateChangeEvents with an explicit batch
// timestamp. Output order follows the input changes.
func GenerateChangeEventsAt(changes []Change, auditScope, sourceDocumentURI string, at time.Time) []rdf.Triple {
	changedAt := at.UTC().Format(time.RFC3339)

	triples := make([]rdf.Triple, 0, len(changes)*7)
	for _, change := range changes {
		event := kg.AuditNamespace + auditScope + "/" + uuid.New().String()

		triples = append(triples,
			rdf.NewRef(event, kg.RDFType, kg.ClassChangeEvent),
			rdf.NewRef(event, kg.PredicateChangeEntity, change.Entity),
			rdf.NewRef(event, kg.PredicateChangeProperty, change.Property),
		)
		if change.Type == Update || change.Type == Delete {
			triples = append(triples,
				rdf.NewLiteral(event, kg.PredicatePreviousValue, change.PreviousValue))
		}
		if change.Type == Insert || change.Type == Update {
			triples = append(triples,
				rdf.NewLiteral(event, kg.PredicateNewValue, change.NewValue))
		}
		triples = append(triples,
			rdf.NewLiteral(event, kg.PredicateChangeType, string(change.Type)),
			rdf.NewTypedLiteral(event, kg.PredicateChangedAt, changedAt, kg.XSDDateTime),
			rdf.NewRef(event, kg.PredicateChangeSource, sourceDocumentURI),
		)
	}
	return triples
}
