package diff

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/kg"
)

func TestGenerateChangeEventsShape(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	changes := []Change{
		{Entity: e1, Property: predAge, NewValue: "30", Type: Insert},
		{Entity: e1, Property: predAge, PreviousValue: "30", NewValue: "31", Type: Update},
		{Entity: e1, Property: predAge, PreviousValue: "31", Type: Delete},
	}

	triples := GenerateChangeEventsAt(changes, "acme/main", docA, at)

	// INSERT and DELETE carry 6 facts each, UPDATE carries 7.
	require.Len(t, triples, 19)

	byEvent := rdf.GroupBySubject(triples)
	require.Len(t, byEvent, 3, "each change mints its own event URI")

	for event, facts := range byEvent {
		assert.True(t, strings.HasPrefix(event, kg.AuditNamespace+"acme/main/"),
			"event %s not under audit scope namespace", event)

		preds := map[string]rdf.Object{}
		for _, f := range facts {
			preds[f.Predicate] = f.Object
		}
		assert.Equal(t, kg.ClassChangeEvent, preds[kg.RDFType].Value())
		assert.Equal(t, e1, preds[kg.PredicateChangeEntity].Value())
		assert.Equal(t, predAge, preds[kg.PredicateChangeProperty].Value())
		assert.Equal(t, docA, preds[kg.PredicateChangeSource].Value())
		assert.Equal(t, "2026-03-04T05:06:07Z", preds[kg.PredicateChangedAt].Value(),
			"batch timestamp shared by every event")

		switch ChangeType(preds[kg.PredicateChangeType].Value()) {
		case Insert:
			assert.NotContains(t, preds, kg.PredicatePreviousValue)
			assert.Equal(t, "30", preds[kg.PredicateNewValue].Value())
		case Update:
			assert.Equal(t, "30", preds[kg.PredicatePreviousValue].Value())
			assert.Equal(t, "31", preds[kg.PredicateNewValue].Value())
		case Delete:
			assert.Equal(t, "31", preds[kg.PredicatePreviousValue].Value())
			assert.NotContains(t, preds, kg.PredicateNewValue)
		default:
			t.Fatalf("unexpected change type %v", preds[kg.PredicateChangeType])
		}
	}
}

func TestGenerateChangeEventsOrderFollowsInput(t *testing.T) {
	changes := []Change{
		{Entity: "e-b", Property: "p", NewValue: "1", Type: Insert},
		{Entity: "e-a", Property: "p", NewValue: "2", Type: Insert},
	}
	triples := GenerateChangeEventsAt(changes, "ws", docA, time.Now())

	var entities []string
	for _, tr := range triples {
		if tr.Predicate == kg.PredicateChangeEntity {
			entities = append(entities, tr.Object.Value())
		}
	}
	assert.Equal(t, []string{"e-b", "e-a"}, entities)
}

func TestGenerateChangeEventsEmpty(t *testing.T) {
	assert.Empty(t, GenerateChangeEvents(nil, "ws", docA))
}
