package where

import (
	"regexp"
	"strings"
)

// LikeToRegex translates a LIKE pattern into an anchored, case-insensitive regular expression.
// Regex metacharacters in the pattern are escaped first, then % matches any run of
// characters and _ matches exactly one.
func LikeToRegex(pattern string) string {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, "%", ".*")
	quoted = strings.ReplaceAll(quoted, "_", ".")
	return anchor(quoted)
}

func anchor(body string) string { return "(?is)^(?:" + body + ")$" }

// matchPattern runs an anchored expression against value.
// Non-scalar operands and invalid expressions never match.
func matchPattern(value, pattern any, translate func(string) string) bool {
	if !IsScalar(value) || !IsScalar(pattern) {
		return false
	}
	re, err := regexp.Compile(translate(StringOf(pattern)))
	if err != nil {
		return false
	}
	return re.MatchString(StringOf(value))
}
