package formatter

import (
	"strconv"
	"strings"
)

// CitationKey derives a key from the first author's surname and the year:
// "Knuth, Donald" and 1984 give "knuth1984". Authors without a comma are used whole.
func CitationKey(author string, year int) string {
	surname, _, _ := strings.Cut(author, ",")

	return strings.ToLower(strings.TrimSpace(surname)) + strconv.Itoa(year)
}
