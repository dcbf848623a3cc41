package kg

// Namespace is the base IRI prefix for all Semgraph ontology terms.
const Namespace = "https://semgraph.dev/ontology/"

// EntityNamespace is the base IRI for graph entity instances.
const EntityNamespace = "https://semgraph.dev/entity/"

// AuditNamespace is the base IRI for change-event instances.
const AuditNamespace = "https://semgraph.dev/audit/"

// DocumentNamespace is the base IRI for source-document instances.
const DocumentNamespace = "https://semgraph.dev/document/"

// Standard W3C namespaces used throughout serialization.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// Well-known term IRIs.
const (
	// RDFType is the rdf:type predicate.
	RDFType = RDFNamespace + "type"

	// RDFSLabel is the rdfs:label predicate used for display labels.
	RDFSLabel = RDFSNamespace + "label"

	// XSDString is the xsd:string datatype IRI.
	XSDString = XSDNamespace + "string"

	// XSDDateTime is the xsd:dateTime datatype IRI.
	XSDDateTime = XSDNamespace + "dateTime"

	// XSDInteger is the xsd:integer datatype IRI.
	XSDInteger = XSDNamespace + "integer"

	// XSDDecimal is the xsd:decimal datatype IRI.
	XSDDecimal = XSDNamespace + "decimal"

	// XSDBoolean is the xsd:boolean datatype IRI.
	XSDBoolean = XSDNamespace + "boolean"
)

// Class IRIs for the Semgraph ontology.
const (
	// ClassChangeEvent is the type of an audit change-event record.
	ClassChangeEvent = Namespace + "ChangeEvent"

	// ClassSourceDocument is the type of a source-document wrapper entity.
	// Subjects typed as ClassSourceDocument are schema-level, not instance
	// entities, and are excluded from audit candidate extraction.
	ClassSourceDocument = Namespace + "SourceDocument"
)

// SchemaLevelClasses lists the rdf:type objects that mark a subject as a
// schema-level resource rather than an instance entity. Subjects whose
// incoming triples declare one of these types never participate in diffing.
var SchemaLevelClasses = map[string]struct{}{
	ClassSourceDocument:             {},
	OWLNamespace + "Class":          {},
	OWLNamespace + "ObjectProperty": {},
	OWLNamespace + "DatatypeProperty": {},
	OWLNamespace + "AnnotationProperty": {},
	RDFSNamespace + "Class":         {},
	RDFSNamespace + "Datatype":      {},
}

// IsSchemaLevelClass reports whether the given IRI marks a schema-level type.
func IsSchemaLevelClass(iri string) bool {
	_, ok := SchemaLevelClasses[iri]
	return ok
}

// Prefixes returns the namespace prefix map used for batch serialization.
// The returned map is a fresh copy; callers may extend it.
func Prefixes() map[string]string {
	return map[string]string{
		"rdf":      RDFNamespace,
		"rdfs":     RDFSNamespace,
		"owl":      OWLNamespace,
		"xsd":      XSDNamespace,
		"semgraph": Namespace,
		"entity":   EntityNamespace,
		"audit":    AuditNamespace,
		"document": DocumentNamespace,
	}
}
