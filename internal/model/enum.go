package model

import (
	"fmt"
	"strings"
)

// EncodeName returns the text form of an enum value.
// names[0] is the text of the zero value; empty means the zero value is invalid.
func EncodeName(names []string, v int, kind string) ([]byte, error) {
	if v < 0 || v >= len(names) || names[v] == "" {
		return nil, fmt.Errorf("invalid %s %d", kind, v)
	}
	return []byte(names[v]), nil
}

// DecodeName parses the text form of an enum value (case-insensitive).
func DecodeName(names []string, text []byte, kind string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range names {
		if name != "" && name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

// NameOf returns the text form of v or a placeholder for unknown values.
func NameOf(names []string, v int) string {
	if v < 0 || v >= len(names) || names[v] == "" {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}
