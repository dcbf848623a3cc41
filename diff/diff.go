package diff

import (
	"sort"

	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/kg"
)

// Compute classifies the transition from existing to incoming facts, both
// grouped by entity URI.
//
// Candidate entities are the union of both groupings. An entity with
// existing facts enters EntityURIsToDelete only when sourceDocFilter is
// empty, or when the entity's recorded source-document fact equals the
// filter; an entity last written by a different document is never deleted
// just because the current document also references it.
//
// Classification works per predicate on the union of both predicate maps,
// with predicates in the skip set excluded. Comparison is on the serialized
// object form: two literals that are semantically equal but differently
// formatted (trailing whitespace, datatype casing) classify as UPDATE. That
// is deliberate — the diff must agree with what is physically stored, not
// with a canonical form the store never saw.
//
// Output order is stable: entities ascending, predicates ascending within
// each entity.
func Compute(existing, incoming map[string][]rdf.Triple, sourceDocFilter string) Result {
	entities := make(map[string]struct{}, len(existing)+len(incoming))
	for e := range existing {
		entities[e] = struct{}{}
	}
	for e := range incoming {
		entities[e] = struct{}{}
	}
	ordered := make([]string, 0, len(entities))
	for e := range entities {
		ordered = append(ordered, e)
	}
	sort.Strings(ordered)

	result := Result{}
	for _, entity := range ordered {
		existingFacts, hasExisting := existing[entity]
		if hasExisting && len(existingFacts) > 0 && ownedByDocument(existingFacts, sourceDocFilter) {
			result.EntityURIsToDelete = append(result.EntityURIsToDelete, entity)
		}
		result.Changes = append(result.Changes,
			classifyEntity(entity, existingFacts, incoming[entity])...)
	}
	return result
}

// ownedByDocument reports whether the entity's existing facts permit stale
// deletion under the given source-document filter.
func ownedByDocument(facts []rdf.Triple, filter string) bool {
	if filter == "" {
		return true
	}
	for _, t := range facts {
		if t.Predicate == kg.PredicateSourceDocument && t.Object.Value() == filter {
			return true
		}
	}
	return false
}

// classifyEntity emits the per-predicate changes for one entity.
func classifyEntity(entity string, existingFacts, incomingFacts []rdf.Triple) []Change {
	prev := factsByPredicate(existingFacts)
	next := factsByPredicate(incomingFacts)

	predicates := make(map[string]struct{}, len(prev)+len(next))
	for p := range prev {
		predicates[p] = struct{}{}
	}
	for p := range next {
		predicates[p] = struct{}{}
	}
	ordered := make([]string, 0, len(predicates))
	for p := range predicates {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var changes []Change
	for _, predicate := range ordered {
		prevObj, inPrev := prev[predicate]
		nextObj, inNext := next[predicate]

		switch {
		case inPrev && inNext:
			if prevObj.Serialize() != nextObj.Serialize() {
				changes = append(changes, Change{
					Entity:        entity,
					Property:      predicate,
					PreviousValue: prevObj.Value(),
					NewValue:      nextObj.Value(),
					Type:          Update,
				})
			}
		case inNext:
			changes = append(changes, Change{
				Entity:   entity,
				Property: predicate,
				NewValue: nextObj.Value(),
				Type:     Insert,
			})
		default:
			changes = append(changes, Change{
				Entity:        entity,
				Property:      predicate,
				PreviousValue: prevObj.Value(),
				Type:          Delete,
			})
		}
	}
	return changes
}

// factsByPredicate maps each non-skip-set predicate to its first object.
// Repeated predicates keep the first occurrence; the fact representation
// carries one value per predicate per entity.
func factsByPredicate(facts []rdf.Triple) map[string]rdf.Object {
	m := make(map[string]rdf.Object, len(facts))
	for _, t := range facts {
		if kg.InSkipSet(t.Predicate) {
			continue
		}
		if _, seen := m[t.Predicate]; !seen {
			m[t.Predicate] = t.Object
		}
	}
	return m
}
