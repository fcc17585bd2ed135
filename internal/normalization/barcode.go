package normalization

import (
	"strings"
)

// ParseBarcode reduces scanner or manual barcode input to its digits.
// Scanners emit separators and checksum spacing inconsistently; manual entry
// adds whitespace. If nothing digit-like remains the trimmed raw string is
// returned so the input still produces a usable cache key.
func ParseBarcode(input string) (normalized string, fellBack bool) {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return strings.TrimSpace(input), true
	}
	return b.String(), false
}
