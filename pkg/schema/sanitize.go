package schema

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// reservedWords are SQL keywords that cannot stand alone as identifiers.
// A column whose leading word is reserved gets a "_col" suffix; a table
// gets "_table". Sanitization is idempotent, so already-suffixed names
// pass through unchanged.
var reservedWords = map[string]struct{}{
	"order": {}, "group": {}, "table": {}, "select": {}, "where": {},
	"from": {}, "insert": {}, "update": {}, "delete": {}, "user": {},
	"index": {},
}

const maxTableNameBytes = 55

// SanitizeIdentifier maps an arbitrary header to a safe lowercase SQL
// column identifier. The same input always yields the same output.
func SanitizeIdentifier(name string) string {
	s := normalize(name)
	if s == "" {
		s = "col"
	}
	if unicode.IsDigit(rune(s[0])) {
		s = "col_" + s
	}
	if leadingWordReserved(s) && !strings.HasSuffix(s, "_col") {
		s += "_col"
	}
	return s
}

// SanitizeTableName derives a table identifier from a source filename,
// dropping the extension and truncating long names.
func SanitizeTableName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	s := normalize(base)
	if s == "" {
		s = "dataset"
	}
	if unicode.IsDigit(rune(s[0])) {
		s = "table_" + s
	}
	if leadingWordReserved(s) && !strings.HasSuffix(s, "_table") {
		s += "_table"
	}
	if len(s) > maxTableNameBytes {
		s = strings.TrimRight(s[:maxTableNameBytes], "_")
	}
	return s
}

// normalize replaces every non-alphanumeric rune with an underscore,
// lowercases, collapses underscore runs and trims the ends.
func normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevUnderscore := false
	for _, r := range strings.ToLower(name) {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !ok {
			r = '_'
		}
		if r == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}

func leadingWordReserved(s string) bool {
	word, _, _ := strings.Cut(s, "_")
	_, ok := reservedWords[word]
	return ok
}

// DedupIdentifiers suffixes repeated names with _1, _2 and so on, in
// order of appearance. The first occurrence keeps the bare name.
func DedupIdentifiers(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, name := range names {
		if seen[name] == 0 {
			seen[name] = 1
			out[i] = name
			continue
		}
		n := seen[name]
		candidate := fmt.Sprintf("%s_%d", name, n)
		for seen[candidate] > 0 {
			n++
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		seen[name] = n + 1
		seen[candidate] = 1
		out[i] = candidate
	}
	return out
}
