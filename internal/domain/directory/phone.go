package directory

import "strings"

// FormatPhone strips everything but digits and renders what is left as
// (ddd) ddd-dddd, growing the mask as digits arrive. Digits past the tenth
// are dropped.
func FormatPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 0:
		return ""
	case len(digits) <= 3:
		return "(" + digits
	case len(digits) <= 6:
		return "(" + digits[:3] + ") " + digits[3:]
	}
	if len(digits) > 10 {
		digits = digits[:10]
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}
