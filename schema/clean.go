package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/randalmurphal/specflow"
)

// maxNameWords bounds persona names so prompt and export formatting stays
// predictable.
const maxNameWords = 3

// CleanName normalizes a persona name: Unicode compatibility normalization,
// then strip everything except letters, spaces, apostrophes, and hyphens,
// collapse whitespace, and keep at most three words.
func CleanName(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || r == ' ' || r == '\'' || r == '-' {
			b.WriteRune(r)
		}
	}
	words := strings.Fields(b.String())
	if len(words) > maxNameWords {
		words = words[:maxNameWords]
	}
	return strings.Join(words, " ")
}

// ClampPainDegree forces a pain degree into the valid 1-5 range. Providers
// occasionally emit 0 or 10-point scales; clamping keeps the item usable
// without rejecting the batch.
func ClampPainDegree(n int) int {
	if n < specflow.PainDegreeMin {
		return specflow.PainDegreeMin
	}
	if n > specflow.PainDegreeMax {
		return specflow.PainDegreeMax
	}
	return n
}
