package identity

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Acme Corp", "acme-corp"},
		{"diacritics", "Müller Straße", "muller-strasse"},
		{"collapse runs", "a -- b__c", "a-b-c"},
		{"trim separators", "  --hello-- ", "hello"},
		{"digits kept", "Route 66", "route-66"},
		{"empty", "", ""},
		{"only punctuation", "!!! ???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCaseFolding(t *testing.T) {
	// Case folding goes beyond ASCII lowercasing: ß folds to ss.
	if got := Normalize("Straße"); got != "strasse" {
		t.Errorf("Normalize(Straße) = %q, want strasse", got)
	}
	if Normalize("ACME corp") != Normalize("acme CORP") {
		t.Error("Normalize must be case-insensitive")
	}
}

func TestNormalizeNonLatin(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"cjk", "东风汽车", "东风汽车"},
		{"cyrillic folded", "Газпром", "газпром"},
		{"greek folded", "Ελλάδα", "ελλαδα"},
		{"mixed scripts", "Toyota 自動車", "toyota-自動車"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveNonLatinLabelsStayDistinct(t *testing.T) {
	a := Resolve("东风汽车", "Organization", "ws", nil)
	b := Resolve("中国石油", "Organization", "ws", nil)
	if a == b {
		t.Fatalf("distinct non-Latin labels resolve to the same identifier: %q", a)
	}
	if a == "ws/organization/"+UnknownIdentity {
		t.Errorf("non-Latin label collapsed to %q", a)
	}
}

func TestResolveDeterminism(t *testing.T) {
	keys := []Key{{Name: "taxId", Value: "123"}}
	first := Resolve("Acme Corp", "Organization", "acme/main", keys)
	for i := 0; i < 10; i++ {
		if got := Resolve("Acme Corp", "Organization", "acme/main", keys); got != first {
			t.Fatalf("Resolve not deterministic: %q vs %q", got, first)
		}
	}
	if first != "acme/main/organization/123" {
		t.Errorf("Resolve = %q, want acme/main/organization/123", first)
	}
}

func TestResolveIdentityKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
		want string
	}{
		{
			name: "declared order preserved",
			keys: []Key{{Name: "b", Value: "Second"}, {Name: "a", Value: "First"}},
			want: "ws/person/second-first",
		},
		{
			name: "empty values skipped",
			keys: []Key{{Name: "a", Value: "  "}, {Name: "b", Value: "K-42"}},
			want: "ws/person/k-42",
		},
		{
			name: "all empty falls back to label",
			keys: []Key{{Name: "a", Value: ""}, {Name: "b", Value: "??"}},
			want: "ws/person/jane-doe",
		},
		{
			name: "no keys uses label",
			keys: nil,
			want: "ws/person/jane-doe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve("Jane Doe", "Person", "ws", tt.keys); got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveEverythingEmpty(t *testing.T) {
	got := Resolve("", "", "ws", nil)
	if got != "ws/unknown/unknown" {
		t.Errorf("Resolve = %q, want ws/unknown/unknown", got)
	}
}

func TestSortKeys(t *testing.T) {
	keys := []Key{{Name: "z", Value: "1"}, {Name: "a", Value: "2"}}
	sorted := SortKeys(keys)
	if sorted[0].Name != "a" || sorted[1].Name != "z" {
		t.Errorf("SortKeys order wrong: %+v", sorted)
	}
	if keys[0].Name != "z" {
		t.Error("SortKeys must not mutate its input")
	}
}
