// Package diff computes per-entity, per-predicate change classifications
// between a previous and an incoming grouping of facts, and materializes
// append-only change events from the result.
package diff

// ChangeType classifies one predicate transition.
type ChangeType string

const (
	// Insert marks a predicate present only in the incoming facts.
	Insert ChangeType = "INSERT"

	// Update marks a predicate present on both sides with differing values.
	Update ChangeType = "UPDATE"

	// Delete marks a predicate present only in the existing facts.
	Delete ChangeType = "DELETE"
)

// Change records one predicate's value transition for one entity.
// PreviousValue is populated only for UPDATE and DELETE, NewValue only for
// INSERT and UPDATE; the other side is the empty string.
type Change struct {
	Entity        string
	Property      string
	PreviousValue string
	NewValue      string
	Type          ChangeType
}

// Result is the output of Compute: the classified changes and the entities
// whose stale facts must be physically removed before re-insertion.
type Result struct {
	Changes            []Change
	EntityURIsToDelete []string
}
