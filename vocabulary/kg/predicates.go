package kg

// System predicates are written by the ingestion layer itself, not derived
// from document content. They change on every re-ingestion and are excluded
// from diffing so repeated ingestion of an unmodified document stays silent.
const (
	// PredicateSourceDocument links an entity to the document that last
	// wrote it.
	PredicateSourceDocument = Namespace + "sourceDocument"

	// PredicateRowIndex records the tabular row an entity was extracted from.
	PredicateRowIndex = Namespace + "rowIndex"

	// PredicateLastUpdatedBy records the principal that last wrote an entity.
	PredicateLastUpdatedBy = Namespace + "lastUpdatedBy"

	// PredicateLastUpdatedAt records the RFC3339 time of the last write.
	PredicateLastUpdatedAt = Namespace + "lastUpdatedAt"
)

// Audit predicates describe a single change event.
const (
	// PredicateChangeEntity links a change event to the entity that changed.
	PredicateChangeEntity = Namespace + "changeEntity"

	// PredicateChangeProperty links a change event to the predicate whose
	// value changed.
	PredicateChangeProperty = Namespace + "changeProperty"

	// PredicatePreviousValue is the serialized value before the change.
	// Present only for UPDATE and DELETE events.
	PredicatePreviousValue = Namespace + "previousValue"

	// PredicateNewValue is the serialized value after the change.
	// Present only for INSERT and UPDATE events.
	PredicateNewValue = Namespace + "newValue"

	// PredicateChangeType is the change classification literal
	// (INSERT, UPDATE, or DELETE).
	PredicateChangeType = Namespace + "changeType"

	// PredicateChangedAt is the shared RFC3339 timestamp of the commit that
	// produced the event. Every event in one batch carries the same value so
	// all changes from one commit sort together.
	PredicateChangedAt = Namespace + "changedAt"

	// PredicateChangeSource links a change event to the document whose
	// ingestion caused it.
	PredicateChangeSource = Namespace + "changeSource"
)

// SkipSet is the fixed set of predicates excluded from diffing. These are
// system-managed and would generate audit noise on every re-ingestion.
var SkipSet = map[string]struct{}{
	RDFType:                 {},
	RDFSLabel:               {},
	PredicateSourceDocument: {},
	PredicateRowIndex:       {},
	PredicateLastUpdatedBy:  {},
	PredicateLastUpdatedAt:  {},
}

// InSkipSet reports whether the predicate is excluded from diffing.
func InSkipSet(predicate string) bool {
	_, ok := SkipSet[predicate]
	return ok
}
