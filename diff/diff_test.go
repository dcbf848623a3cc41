package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/kg"
)

const (
	e1       = "https://semgraph.dev/entity/ws/person/e1"
	predName = "https://semgraph.dev/ontology/name"
	predAge  = "https://semgraph.dev/ontology/age"
	docA     = "https://semgraph.dev/document/doc-a"
	docB     = "https://semgraph.dev/document/doc-b"
)

func TestComputeNoOp(t *testing.T) {
	grouping := map[string][]rdf.Triple{
		e1: {
			rdf.NewLiteral(e1, predName, "Alice"),
			rdf.NewLiteral(e1, predAge, "30"),
		},
	}

	result := Compute(grouping, grouping, "")

	assert.Empty(t, result.Changes)
	// No filter: every existing entity is eligible for stale deletion.
	assert.Equal(t, []string{e1}, result.EntityURIsToDelete)
}

func TestComputeSinglePredicateAdded(t *testing.T) {
	existing := map[string][]rdf.Triple{
		e1: {rdf.NewLiteral(e1, predName, "Alice")},
	}
	incoming := map[string][]rdf.Triple{
		e1: {
			rdf.NewLiteral(e1, predName, "Alice"),
			rdf.NewLiteral(e1, predAge, "30"),
		},
	}

	result := Compute(existing, incoming, "")

	require.Len(t, result.Changes, 1)
	assert.Equal(t, Change{
		Entity:   e1,
		Property: predAge,
		NewValue: "30",
		Type:     Insert,
	}, result.Changes[0])
}

func TestComputeSinglePredicateChanged(t *testing.T) {
	existing := map[string][]rdf.Triple{
		e1: {rdf.NewLiteral(e1, predAge, "30")},
	}
	incoming := map[string][]rdf.Triple{
		e1: {rdf.NewLiteral(e1, predAge, "31")},
	}

	result := Compute(existing, incoming, "")

	require.Len(t, result.Changes, 1)
	assert.Equal(t, Change{
		Entity:        e1,
		Property:      predAge,
		PreviousValue: "30",
		NewValue:      "31",
		Type:          Update,
	}, result.Changes[0])
}

func TestComputeSinglePredicateRemoved(t *testing.T) {
	existing := map[string][]rdf.Triple{
		e1: {rdf.NewLiteral(e1, predAge, "30")},
	}
	incoming := map[string][]rdf.Triple{
		e1: {},
	}

	result := Compute(existing, incoming, "")

	require.Len(t, result.Changes, 1)
	assert.Equal(t, Change{
		Entity:        e1,
		Property:      predAge,
		PreviousValue: "30",
		Type:          Delete,
	}, result.Changes[0])
}

func TestComputeScopedDeletion(t *testing.T) {
	existing := map[string][]rdf.Triple{
		e1: {
			rdf.NewLiteral(e1, predName, "Alice"),
			rdf.NewRef(e1, kg.PredicateSourceDocument, docA),
		},
	}
	incoming := map[string][]rdf.Triple{
		e1: {rdf.NewLiteral(e1, predName, "Alice")},
	}

	// Filtered by a different document: e1 must survive.
	result := Compute(existing, incoming, docB)
	assert.Empty(t, result.EntityURIsToDelete)

	// Filtered by the owning document: e1 is stale.
	result = Compute(existing, incoming, docA)
	assert.Equal(t, []string{e1}, result.EntityURIsToDelete)

	// No filter: ownership is not checked.
	result = Compute(existing, incoming, "")
	assert.Equal(t, []string{e1}, result.EntityURIsToDelete)
}

func TestComputeEntityWithoutSourceDocNotDeletedUnderFilter(t *testing.T) {
	existing := map[string][]rdf.Triple{
		e1: {rdf.NewLiteral(e1, predName, "Alice")},
	}
	result := Compute(existing, map[string][]rdf.Triple{}, docA)
	assert.Empty(t, result.EntityURIsToDelete)
}

func TestComputeSkipSetExcluded(t *testing.T) {
	existing := map[string][]rdf.Triple{
		e1: {
			rdf.NewRef(e1, kg.RDFType, "https://semgraph.dev/ontology/Person"),
			rdf.NewLiteral(e1, kg.RDFSLabel, "old label"),
			rdf.NewRef(e1, kg.PredicateSourceDocument, docA),
			rdf.NewLiteral(e1, kg.PredicateLastUpdatedAt, "2026-01-01T00:00:00Z"),
		},
	}
	incoming := map[string][]rdf.Triple{
		e1: {
			rdf.NewRef(e1, kg.RDFType, "https://semgraph.dev/ontology/Person"),
			rdf.NewLiteral(e1, kg.RDFSLabel, "new label"),
			rdf.NewRef(e1, kg.PredicateSourceDocument, docB),
			rdf.NewLiteral(e1, kg.PredicateLastUpdatedAt, "2026-02-02T00:00:00Z"),
			rdf.NewLiteral(e1, kg.PredicateRowIndex, "7"),
		},
	}

	result := Compute(existing, incoming, "")
	assert.Empty(t, result.Changes, "system-managed predicates must not produce changes")
}

func TestComputeSerializedFormComparison(t *testing.T) {
	existing := map[string][]rdf.Triple{
		e1: {rdf.NewLiteral(e1, predAge, "30")},
	}
	incoming := map[string][]rdf.Triple{
		e1: {rdf.NewTypedLiteral(e1, predAge, "30", kg.XSDInteger)},
	}

	// Same value, different serialized form: classified as UPDATE by design.
	result := Compute(existing, incoming, "")
	require.Len(t, result.Changes, 1)
	assert.Equal(t, Update, result.Changes[0].Type)
	assert.Equal(t, "30", result.Changes[0].PreviousValue)
	assert.Equal(t, "30", result.Changes[0].NewValue)
}

func TestComputeNewEntityAllInserts(t *testing.T) {
	incoming := map[string][]rdf.Triple{
		e1: {
			rdf.NewLiteral(e1, predName, "Alice"),
			rdf.NewLiteral(e1, predAge, "30"),
		},
	}

	result := Compute(map[string][]rdf.Triple{}, incoming, "")

	require.Len(t, result.Changes, 2)
	for _, c := range result.Changes {
		assert.Equal(t, Insert, c.Type)
		assert.Empty(t, c.PreviousValue)
	}
	assert.Empty(t, result.EntityURIsToDelete, "entities without existing facts are never stale")
}

func TestComputeStableOrder(t *testing.T) {
	e2 := "https://semgraph.dev/entity/ws/person/e2"
	incoming := map[string][]rdf.Triple{
		e2: {rdf.NewLiteral(e2, predName, "Bob")},
		e1: {
			rdf.NewLiteral(e1, predName, "Alice"),
			rdf.NewLiteral(e1, predAge, "30"),
		},
	}

	first := Compute(nil, incoming, "")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Compute(nil, incoming, ""))
	}
	// Entities ascending, predicates ascending within entity.
	require.Len(t, first.Changes, 3)
	assert.Equal(t, e1, first.Changes[0].Entity)
	assert.Equal(t, predAge, first.Changes[0].Property)
	assert.Equal(t, predName, first.Changes[1].Property)
	assert.Equal(t, e2, first.Changes[2].Entity)
}
