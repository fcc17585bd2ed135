package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

func ParseInputStringPtr(input *string) *string {
	normalized := strings.ToLower(strings.TrimSpace(*input))
	return &normalized
}

// CollapseWhitespace trims the string and squeezes every internal run of
// whitespace down to a single space.
func CollapseWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
