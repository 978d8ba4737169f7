package utils

import (
	"regexp"
	"unicode/utf8"
)

const (
	// GitHub text length limits
	// https://docs.github.com/en/rest/issues/issues?apiVersion=2022-11-28
	MaxIssueTitleLength = 256
	MaxIssueBodyLength  = 65536
	MaxCommentLength    = 65536

	TruncateSuffix = "... [truncated]"

	// Layout used for every timestamp rendered into migrated text
	TimestampLayout = "2006-01-02 15:04:05 MST"
)

var whitespace = regexp.MustCompile(`\s+`)

// TruncateText cuts text to maxLength runes, marking the cut with TruncateSuffix.
func TruncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	runes := []rune(text)
	availableLength := maxLength - utf8.RuneCountInString(TruncateSuffix)
	if availableLength <= 0 {
		return string(runes[:maxLength])
	}
	return string(runes[:availableLength]) + TruncateSuffix
}

// StripWhitespace removes every whitespace character from s.
func StripWhitespace(s string) string {
	return whitespace.ReplaceAllString(s, "")
}
