package rdf

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Triple
	}{
		{
			name: "uri reference object",
			line: `<https://semgraph.dev/entity/a> <https://semgraph.dev/ontology/knows> <https://semgraph.dev/entity/b> .`,
			want: NewRef("https://semgraph.dev/entity/a", "https://semgraph.dev/ontology/knows", "https://semgraph.dev/entity/b"),
		},
		{
			name: "plain literal object",
			line: `<https://semgraph.dev/entity/a> <http://www.w3.org/2000/01/rdf-schema#label> "Acme Corp" .`,
			want: NewLiteral("https://semgraph.dev/entity/a", "http://www.w3.org/2000/01/rdf-schema#label", "Acme Corp"),
		},
		{
			name: "typed literal object",
			line: `<https://semgraph.dev/entity/a> <https://semgraph.dev/ontology/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> .`,
			want: NewTypedLiteral("https://semgraph.dev/entity/a", "https://semgraph.dev/ontology/age", "30", "http://www.w3.org/2001/XMLSchema#integer"),
		},
		{
			name: "escaped quote in literal",
			line: `<https://semgraph.dev/entity/a> <https://semgraph.dev/ontology/note> "say \"hi\"" .`,
			want: NewLiteral("https://semgraph.dev/entity/a", "https://semgraph.dev/ontology/note", `say "hi"`),
		},
		{
			name: "no terminating dot",
			line: `<https://semgraph.dev/entity/a> <https://semgraph.dev/ontology/note> "x"`,
			want: NewLiteral("https://semgraph.dev/entity/a", "https://semgraph.dev/ontology/note", "x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("ParseLine(%q) error: %v", tt.line, err)
			}
			if got == nil {
				t.Fatalf("ParseLine(%q) returned nil", tt.line)
			}
			if *got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, *got, tt.want)
			}
		})
	}
}

func TestParseLineSkipsNonFacts(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"# a comment",
		"@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .",
		"PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>",
	}
	for _, line := range lines {
		got, err := ParseLine(line)
		if got != nil || err != nil {
			t.Errorf("ParseLine(%q) = %v, %v, want nil, nil", line, got, err)
		}
	}
}

func TestParseLineMalformed(t *testing.T) {
	lines := []string{
		"not a triple at all",
		`<https://x> "missing predicate" .`,
		`<https://x> <https://p> bare-token .`,
		`<https://x> <https://p> "unterminated`,
		`<https://x> <https://p> "v" trailing garbage .`,
	}
	for _, line := range lines {
		got, err := ParseLine(line)
		if got != nil {
			t.Errorf("ParseLine(%q) returned a triple, want malformed error", line)
		}
		var malformed *MalformedFactError
		if !errors.As(err, &malformed) {
			t.Errorf("ParseLine(%q) error = %v, want MalformedFactError", line, err)
		}
	}
}

func TestLiteralRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		`back\slash`,
		`quote " inside`,
		"line\nbreak",
		"carriage\rreturn",
		"tab\tstop",
		"all\\of\"them\n\r\t",
		"",
	}
	for _, v := range values {
		triple := NewLiteral("https://semgraph.dev/entity/e", "https://semgraph.dev/ontology/p", v)
		parsed, err := ParseLine(triple.Line())
		if err != nil {
			t.Fatalf("round-trip parse of %q failed: %v", v, err)
		}
		if *parsed != triple {
			t.Errorf("round trip of %q: got %+v, want %+v", v, *parsed, triple)
		}
	}
}

func TestTypedLiteralRoundTrip(t *testing.T) {
	triple := NewTypedLiteral("https://semgraph.dev/entity/e", "https://semgraph.dev/ontology/when",
		"2026-01-02T03:04:05Z", "http://www.w3.org/2001/XMLSchema#dateTime")
	parsed, err := ParseLine(triple.Line())
	if err != nil {
		t.Fatalf("round-trip parse failed: %v", err)
	}
	if *parsed != triple {
		t.Errorf("round trip: got %+v, want %+v", *parsed, triple)
	}
}

func TestUnescapeUnknownSequence(t *testing.T) {
	if got := UnescapeLiteral(`a\zb`); got != `a\zb` {
		t.Errorf("unknown escapes must pass through, got %q", got)
	}
}
