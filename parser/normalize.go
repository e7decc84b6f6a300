package parser

import (
	"strings"
	"unicode"
)

// NormalizeName canonicalizes a make or model string: hyphen- or
// space-delimited tokens are capitalized and rejoined with single spaces,
// so "bmw-serija-3", "BMW SERIJA 3" and "Bmw Serija 3" all collapse to
// "Bmw Serija 3". Normalizing an already-normalized string is a no-op.
func NormalizeName(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	for i, f := range fields {
		fields[i] = capitalize(f)
	}
	return strings.Join(fields, " ")
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
