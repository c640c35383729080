package service

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// cleanText trims s and checks its length in runes.
func cleanText(field, s string, min, max int) (string, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < min {
		if min == 1 {
			return "", invalidf("%s is required", field)
		}
		return "", invalidf("%s must be at least %d characters", field, min)
	}
	if max > 0 && n > max {
		return "", invalidf("%s must be at most %d characters", field, max)
	}
	return s, nil
}
