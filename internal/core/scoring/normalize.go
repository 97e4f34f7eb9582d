package scoring

import (
	"regexp"
	"strings"
)

// Answers arrive as free text from a plain input box, so comparison has to
// absorb cosmetic differences (stray punctuation, brackets, spacing, case)
// without being a full parser.

var (
	scalarJunkRe = regexp.MustCompile(`[^\w.-]`)
	arraySplitRe = regexp.MustCompile(`[\s,]+`)
	bracketRepl  = strings.NewReplacer("[", "", "]", "")
)

// NormalizeScalar reduces a raw answer to a canonical comparable form:
// everything outside [A-Za-z0-9_.-] is dropped, the result is trimmed and
// lowercased. Idempotent.
func NormalizeScalar(s string) string {
	s = scalarJunkRe.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeArray parses a delimited list, optionally wrapped in square
// brackets, into its ordered elements. Empty tokens are dropped, so
// "[1, 2,,3]" and "1 2 3" normalize to the same slice.
func NormalizeArray(s string) []string {
	s = bracketRepl.Replace(s)
	parts := arraySplitRe.Split(s, -1)
	elems := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			elems = append(elems, p)
		}
	}
	return elems
}
