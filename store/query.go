package store

import (
	"fmt"
	"strings"
)

// ValuesClause renders a VALUES block binding the variable to the given IRIs,
// the batched-filtering form every Client implementation must support.
func ValuesClause(variable string, iris []string) string {
	var sb strings.Builder
	sb.WriteString("VALUES ?")
	sb.WriteString(variable)
	sb.WriteString(" {")
	for _, iri := range iris {
		sb.WriteString(" <")
		sb.WriteString(iri)
		sb.WriteString(">")
	}
	sb.WriteString(" }")
	return sb.String()
}

// EntityFactsQuery selects every fact of the given entities. Result
// variables: s, p, o.
func EntityFactsQuery(entityURIs []string) string {
	return fmt.Sprintf("SELECT ?s ?p ?o WHERE { %s ?s ?p ?o }",
		ValuesClause("s", entityURIs))
}

// DeleteEntitiesUpdate removes every fact whose subject is one of the given
// entities. DELETE WHERE does not admit VALUES in its quad pattern, so the
// full DELETE/WHERE form is used.
func DeleteEntitiesUpdate(entityURIs []string) string {
	return fmt.Sprintf("DELETE { ?s ?p ?o } WHERE { %s ?s ?p ?o }",
		ValuesClause("s", entityURIs))
}
