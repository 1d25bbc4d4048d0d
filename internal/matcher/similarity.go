package matcher

import (
	"strings"
	"unicode"
)

// Common designer abbreviations seen in layer names. Both directions are
// expanded before token comparison.
var abbreviations = map[string]string{
	"img":   "image",
	"pic":   "image",
	"photo": "image",
	"txt":   "text",
	"bg":    "background",
	"fg":    "foreground",
	"btn":   "button",
	"hdr":   "header",
	"ftr":   "footer",
	"num":   "number",
	"thumb": "thumbnail",
	"avi":   "avatar",
	"desc":  "description",
	"sub":   "subtitle",
	"ttl":   "title",
}

// normalizeName lowercases a layer name and strips separators, so
// "Player_Name 01" and "playerName01" compare equal.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// tokenize splits a layer name on separators and camelCase boundaries and
// expands known abbreviations.
func tokenize(name string) []string {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := strings.ToLower(cur.String())
		if full, ok := abbreviations[tok]; ok {
			tok = full
		}
		tokens = append(tokens, tok)
		cur.Reset()
	}

	var prev rune
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			if unicode.IsUpper(r) && unicode.IsLower(prev) {
				flush()
			}
			cur.WriteRune(r)
		case unicode.IsDigit(r):
			if unicode.IsLetter(prev) {
				flush()
			}
			cur.WriteRune(r)
		default:
			flush()
		}
		prev = r
	}
	flush()
	return tokens
}

// trailingNumber returns the final numeric token, if any
func trailingNumber(tokens []string) (string, []string) {
	if len(tokens) == 0 {
		return "", tokens
	}
	last := tokens[len(tokens)-1]
	if isNumeric(last) {
		return strings.TrimLeft(last, "0"), tokens[:len(tokens)-1]
	}
	return "", tokens
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func tokensEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isTokenPrefix(short, long []string) bool {
	if len(short) == 0 || len(short) >= len(long) {
		return false
	}
	for i := range short {
		if short[i] != long[i] {
			return false
		}
	}
	return true
}

// patternScore recognizes shared naming conventions between two layer
// names: abbreviation-expanded token equality, numbered sequences, and
// prefix naming. Returns 0 when no convention applies, otherwise a score
// in [0.8, 1.0).
func patternScore(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	na, baseA := trailingNumber(ta)
	nb, baseB := trailingNumber(tb)

	// numbered sequence: same base tokens and matching sequence number
	if na != "" && nb != "" {
		if !tokensEqual(baseA, baseB) || na != nb {
			return 0
		}
		return 0.95
	}

	if tokensEqual(ta, tb) {
		return 0.9
	}
	if isTokenPrefix(ta, tb) || isTokenPrefix(tb, ta) {
		return 0.8
	}
	return 0
}

// fuzzyScore is a character-level similarity ratio between normalized
// names, scaled into [0, 0.9] so fuzzy evidence never outranks an exact or
// pattern match.
func fuzzyScore(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	dist := levenshtein(na, nb)
	ratio := 1.0 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		ratio = 0
	}
	return ratio * 0.9
}

// levenshtein computes edit distance with a two-row table
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
