package utils

import "strings"

// maxInputLen bounds free-form string inputs before they reach the store.
const maxInputLen = 500

// Sanitize trims surrounding whitespace and caps the input length. A basic
// defense against unusually long inputs; schema validation happens at the
// handler boundary before values get here.
func Sanitize(in string) string {
	in = strings.TrimSpace(in)
	if len(in) > maxInputLen {
		in = in[:maxInputLen]
	}
	return in
}
