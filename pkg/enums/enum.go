package enums

import (
	"fmt"
	"slices"
	"strings"
)

// parse normalizes raw (trim, lower-case) and returns the matching member of
// values. kind names the enum in the error.
func parse[T ~string](kind string, values []T, raw string) (T, error) {
	candidate := T(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(values, candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid %s %q", kind, raw)
}
