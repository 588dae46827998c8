package normalizer

import (
	"cmp"
	"errors"
	"strconv"
	"strings"

	"bibnorm/pkg/utils"
)

// Month values are compared on their first three characters.
const monthPrefixLen = 3

// ErrInvalidPageRange is returned when a pages value is not two digit runs joined by '-'.
var ErrInvalidPageRange = errors.New("invalid page range")

// Transformer holds the value coercions applied during validation.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// TruncateMonth keeps the first three characters of a month value.
func (t *Transformer) TruncateMonth(s string) string {
	return utils.FirstRunes(s, monthPrefixLen)
}

// NormalizeMonth lowercases an accepted month abbreviation.
func (t *Transformer) NormalizeMonth(s string) string {
	return strings.ToLower(s)
}

// Integer parses a decimal integer.
func (t *Transformer) Integer(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return n, true
}

// PageRange splits "start-end" into its two page numbers, kept as digit strings
// so that arbitrarily long values can still be ordered with ComparePages.
func (t *Transformer) PageRange(s string) (string, string, error) {
	first, second, ok := strings.Cut(s, "-")
	if !ok || !isDigits(first) || !isDigits(second) {
		return "", "", ErrInvalidPageRange
	}

	return first, second, nil
}

// ComparePages orders two page numbers given as decimal digit strings.
func (t *Transformer) ComparePages(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")

	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}

	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
