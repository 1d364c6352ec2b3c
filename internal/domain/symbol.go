package domain

import (
	"regexp"
	"strings"
)

var symbolRe = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// NormalizeSymbol maps user input to the canonical uppercase ticker form.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func ValidateSymbol(s string) bool {
	return symbolRe.MatchString(s)
}
