// Package planner turns the knowledge snapshot and collected trip
// preferences into deterministic recommendation text and Kakao cards.
// Everything here is pure: the LLM only ever polishes what this package
// already produced.
package planner

import "strings"

// Preferences are the five trip slots collected across turns. Empty
// string means the slot is still unknown.
type Preferences struct {
	Nights  string
	Lodging string
	Vibe    string
	Food    string
	Group   string
}

// SummarizePreferences renders the known slots as a single confirmation
// line. Unset slots are skipped; all-unset yields "".
func SummarizePreferences(p Preferences) string {
	parts := make([]string, 0, 5)
	for _, v := range []string{p.Nights, p.Lodging, p.Vibe, p.Food, p.Group} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "✅ 확인된 조건: " + strings.Join(parts, " · ")
}
