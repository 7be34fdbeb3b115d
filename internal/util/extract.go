package util

import (
	"strings"
)

// ExtractList splits comma-separated form input, trims each element and drops empty ones.
// Order is preserved.
func ExtractList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

// JoinList is the inverse of ExtractList for prefilling a form.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}
