package rdf

import "strings"

// EscapeLiteral applies the literal escaping rules: backslash, double quote,
// newline, carriage return, and tab. Order matters; the backslash must be
// escaped first.
func EscapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// UnescapeLiteral reverses exactly the substitutions of EscapeLiteral.
func UnescapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			// Unknown escape: keep both bytes untouched.
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// ParseLine parses one line of the fact representation into a triple.
//
// Recognized object shapes, tried in order: URI reference (<...>), typed
// literal ("v"^^<datatype>), plain literal ("v"). Blank lines, comments, and
// @prefix declarations return (nil, nil): they carry no fact but are not
// malformed. Anything else returns a *MalformedFactError; callers log and
// skip, a bad line never aborts an ingestion.
func ParseLine(line string) (*Triple, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "@prefix") || strings.HasPrefix(trimmed, "PREFIX") {
		return nil, nil
	}

	rest := trimmed
	subject, rest, ok := takeIRI(rest)
	if !ok {
		return nil, &MalformedFactError{Line: line, Reason: "subject is not an IRI"}
	}
	predicate, rest, ok := takeIRI(rest)
	if !ok {
		return nil, &MalformedFactError{Line: line, Reason: "predicate is not an IRI"}
	}

	object, rest, ok := takeObject(rest)
	if !ok {
		return nil, &MalformedFactError{Line: line, Reason: "unrecognized object form"}
	}

	rest = strings.TrimSpace(rest)
	if rest != "" && rest != "." {
		return nil, &MalformedFactError{Line: line, Reason: "trailing content after object"}
	}

	return &Triple{Subject: subject, Predicate: predicate, Object: object}, nil
}

// takeIRI consumes a leading <...> token and returns its content and the
// remaining input.
func takeIRI(s string) (iri, rest string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") {
		return "", s, false
	}
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return "", s, false
	}
	return s[1:end], s[end+1:], true
}

// takeObject consumes the object term: IRI reference, typed literal, or
// plain literal, in that order.
func takeObject(s string) (Object, string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") {
		iri, rest, ok := takeIRI(s)
		if !ok {
			return nil, s, false
		}
		return URIRef{IRI: iri}, rest, true
	}
	if !strings.HasPrefix(s, `"`) {
		return nil, s, false
	}

	end := closingQuote(s)
	if end < 0 {
		return nil, s, false
	}
	value := UnescapeLiteral(s[1:end])
	rest := s[end+1:]

	if strings.HasPrefix(rest, "^^") {
		datatype, dtRest, ok := takeIRI(rest[2:])
		if !ok {
			return nil, s, false
		}
		return Literal{Val: value, Datatype: datatype}, dtRest, true
	}
	return Literal{Val: value}, rest, true
}

// closingQuote returns the index of the closing unescaped double quote of a
// literal starting at index 0, or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
