package cssval

import (
	"regexp"
	"strings"
)

// unknownPropertyPattern matches the validator's unknown-property message,
// e.g. `Property “zoom” doesn't exist`, with straight or curly quotes.
var unknownPropertyPattern = regexp.MustCompile(`(?i)property\s*["'“”‘’]([^"'“”‘’]+)["'“”‘’]\s*doesn['’]?t\s+exist`)

// ToleratedProperty extracts the lower-cased property name from an
// unknown-property message. It reports false for any other message.
func ToleratedProperty(message string) (string, bool) {
	m := unknownPropertyPattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	name := strings.ToLower(strings.TrimSpace(m[1]))
	if name == "" {
		return "", false
	}
	return name, true
}
