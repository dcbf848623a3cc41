// Package kg defines the IRIs and predicates of the Semgraph knowledge-graph
// ontology: entity and data namespaces, the system-managed predicates that
// are excluded from change detection, and the audit (change-event) vocabulary.
package kg
