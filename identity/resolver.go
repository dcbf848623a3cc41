// Package identity provides deterministic entity identifier resolution.
//
// The resolver is a pure function: identical inputs always yield the
// identical identifier, across processes and over time. There is no
// randomness and no clock dependence, which is what makes re-ingestion of
// the same document idempotent.
package identity

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownIdentity is the identifier assigned when normalization of every
// input yields an empty string.
const UnknownIdentity = "unknown"

// Key is one identity-key value in its declared order. Identity keys are
// properties whose values uniquely determine an entity within its type
// (natural keys such as a tax ID or customer number).
type Key struct {
	Name  string
	Value string
}

// stripDiacritics removes combining marks after NFD decomposition, so
// "Müller" and "Muller" normalize identically.
var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize case-folds the input, strips diacritics, collapses runs of
// non-alphanumeric characters to a single hyphen, and trims leading and
// trailing hyphens. An input that normalizes to nothing returns "".
func Normalize(s string) string {
	stripped, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		// Transformation failures leave the original bytes in place; the
		// slug pass below still produces a usable identifier.
		stripped = s
	}
	lower := cases.Fold().String(stripped)

	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Resolve maps (label, entity type, scope, identity keys) to a deterministic
// entity identifier of the form {scope}/{normalizedType}/{hash}.
//
// When at least one identity-key value is non-empty after normalization, the
// hash is the normalized values joined in their declared order; values that
// normalize to nothing are skipped. When no usable key value exists the hash
// falls back to the normalized label, never to an empty string.
func Resolve(label, entityType, scope string, keys []Key) string {
	hash := ResolveKeys(keys)
	if hash == "" {
		hash = Normalize(label)
	}
	if hash == "" {
		hash = UnknownIdentity
	}

	normType := Normalize(entityType)
	if normType == "" {
		normType = UnknownIdentity
	}

	return scope + "/" + normType + "/" + hash
}

// ResolveKeys joins normalized identity-key values in their declared order.
// Returns "" when every value normalizes to nothing, signalling the caller
// to fall back to label identity.
func ResolveKeys(keys []Key) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := Normalize(k.Value); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "-")
}

// SortKeys orders identity keys by name. Callers use this when the schema
// declares no explicit key order, so the joined hash stays deterministic.
func SortKeys(keys []Key) []Key {
	sorted := make([]Key, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}
