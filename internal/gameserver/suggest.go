package gameserver

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// suggestLimit is the largest edit distance accepted for a name of length n.
func suggestLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// closest returns the known name nearest to name within suggestLimit, or "".
// Ties go to the alphabetically first name.
func closest(name string, known []string) string {
	if len(name) < 3 {
		return ""
	}
	best, bestDist := "", -1
	for _, k := range known {
		d := levenshtein.ComputeDistance(name, k)
		if d == 0 || d > suggestLimit(len(k)) {
			continue
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && k < best) {
			best, bestDist = k, d
		}
	}
	return best
}

// unknown formats an unknown-reference error message with a suggestion when
// a close match exists.
func unknown(kind, name string, known []string) string {
	msg := fmt.Sprintf("unknown %s %q", kind, name)
	if s := closest(name, known); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return msg
}

// ItemIDs returns the registered item IDs in sorted order.
func (c *Content) ItemIDs() []string {
	items := c.Items.AllItems()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	sort.Strings(out)
	return out
}
