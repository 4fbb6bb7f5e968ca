package validators

import (
	"strings"
	"unicode"
)

// SanitizeString collapses whitespace runs, drops control characters and
// cuts the result to maxLen runes. maxLen <= 0 disables the cut.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	n := 0
	pendingSpace := false
	for _, r := range input {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if pendingSpace {
			if maxLen > 0 && n+1 >= maxLen {
				break
			}
			b.WriteByte(' ')
			n++
			pendingSpace = false
		}
		if maxLen > 0 && n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
