package rdf

import (
	"fmt"
	"sort"
	"strings"
)

// ContentType is the media type of serialized fact batches.
const ContentType = "text/turtle"

// SerializeBatch renders triples as line-oriented facts under a shared
// namespace-prefix header. Prefix declarations are emitted in sorted order
// so batch payloads are stable for a given input.
func SerializeBatch(triples []Triple, prefixes map[string]string) string {
	var sb strings.Builder

	names := make([]string, 0, len(prefixes))
	for name := range prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", name, prefixes[name]))
	}
	if len(names) > 0 {
		sb.WriteString("\n")
	}

	for _, t := range triples {
		sb.WriteString(t.Line())
		sb.WriteString("\n")
	}
	return sb.String()
}

// GroupBySubject indexes triples by their subject IRI, preserving the
// per-subject input order. This is the entity grouping the diff engine
// operates on.
func GroupBySubject(triples []Triple) map[string][]Triple {
	grouped := make(map[string][]Triple)
	for _, t := range triples {
		grouped[t.Subject] = append(grouped[t.Subject], t)
	}
	return grouped
}
