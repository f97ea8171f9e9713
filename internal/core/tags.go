package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ParseTags splits a comma-separated tag list. See NormalizeTags.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims labels, drops empties and removes repeats while keeping
// first-seen order. Labels stay case-sensitive; they are NFC-normalised so the
// same text typed on different keyboards dedups. Returns nil when no tag remains.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = norm.NFC.String(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
