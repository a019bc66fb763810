package utils

import (
	"strings"
)

// Dedup trims each entry and keeps the first occurrence, preserving order. Empty entries are dropped.
func Dedup(in []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
