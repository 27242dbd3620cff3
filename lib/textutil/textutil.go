package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeDecimal turns a locale-formatted number fragment into
// something strconv.ParseFloat accepts: decimal commas become points
// and interior whitespace (thousands separators like "60 500") is
// removed.
func NormalizeDecimal(s string) string {
	s = strings.ReplaceAll(s, ",", ".")
	s = whitespaceRegex.ReplaceAllString(s, "")
	return s
}

func NormalizeName(name string) string {
	return strings.Trim(name, " \n\t")
}
