package internal

import (
	"sort"
	"strings"
)

// maxSuggestions is how many of the most expensive records get a tip.
const maxSuggestions = 3

// Tip texts, in rule precedence order.
const (
	TipAdobe   = "Check student/photography plan."
	TipSpotify = "Consider family/duo plan."
	TipAnnual  = "See if annual pricing is cheaper."
	TipRenewal = "Set reminder before renewal."
)

// Suggestion is a savings idea for one record.
type Suggestion struct {
	Record  Record
	Monthly float64
	Annual  float64
	Tip     string
}

// Suggest returns savings ideas for the most expensive records by monthly
// equivalent. It always uses actual costs; the what-if adjustment does not
// apply. Ties keep insertion order.
func Suggest(records []Record) []Suggestion {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ToMonthly(sorted[i].Cost, sorted[i].Cycle) > ToMonthly(sorted[j].Cost, sorted[j].Cycle)
	})
	if len(sorted) > maxSuggestions {
		sorted = sorted[:maxSuggestions]
	}

	suggestions := make([]Suggestion, 0, len(sorted))
	for _, r := range sorted {
		m := ToMonthly(r.Cost, r.Cycle)
		suggestions = append(suggestions, Suggestion{
			Record:  r,
			Monthly: m,
			Annual:  m * 12,
			Tip:     tipFor(r),
		})
	}
	return suggestions
}

// tipFor picks exactly one tip; the first matching rule wins.
func tipFor(r Record) string {
	name := strings.ToLower(r.Name)
	switch {
	case strings.Contains(name, "adobe"):
		return TipAdobe
	case strings.Contains(name, "spotify"):
		return TipSpotify
	case r.Cycle == CycleMonthly:
		return TipAnnual
	default:
		return TipRenewal
	}
}
