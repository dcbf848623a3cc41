package rdf

import "fmt"

// MalformedFactError reports a line that could not be parsed as a fact.
// It is always recovered locally by callers (skip and log): a single bad
// line must not block an entire ingestion.
type MalformedFactError struct {
	Line   string
	Reason string
}

func (e *MalformedFactError) Error() string {
	return fmt.Sprintf("malformed fact line: %s: %q", e.Reason, e.Line)
}
