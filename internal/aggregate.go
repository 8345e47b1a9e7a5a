package internal

import (
	"sort"
)

// ToMonthly converts a cost denominated in cycle into its monthly
// equivalent. Unknown cycles are treated as already monthly.
func ToMonthly(cost float64, cycle Cycle) float64 {
	switch cycle {
	case CycleWeekly:
		return cost * 52 / 12
	case CycleMonthly:
		return cost
	case CycleQuarterly:
		return cost / 3
	case CycleAnnual:
		return cost / 12
	default:
		return cost
	}
}

// Summary holds the aggregate figures derived from a set of records.
type Summary struct {
	MonthlyTotal float64
	AnnualTotal  float64
	ByCategory   map[Category]float64
	ActiveCount  int
	WhatIf       float64
}

// CategoryAmount is one entry of the per-category breakdown.
type CategoryAmount struct {
	Category Category
	Monthly  float64
}

// Summarize computes totals and the per-category breakdown. Every cost is
// scaled by (1 + whatIf/100) before normalization. No intermediate
// rounding is applied; rounding is a display concern.
func Summarize(records []Record, whatIf float64) Summary {
	factor := 1 + whatIf/100
	s := Summary{
		ByCategory:  make(map[Category]float64),
		ActiveCount: len(records),
		WhatIf:      whatIf,
	}
	for _, r := range records {
		m := ToMonthly(r.Cost*factor, r.Cycle)
		s.MonthlyTotal += m
		s.ByCategory[r.Category] += m
	}
	s.AnnualTotal = s.MonthlyTotal * 12
	return s
}

// Categories returns the per-category breakdown sorted by amount
// (highest first), then by name.
func (s Summary) Categories() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s.ByCategory))
	for c, m := range s.ByCategory {
		out = append(out, CategoryAmount{Category: c, Monthly: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Monthly != out[j].Monthly {
			return out[i].Monthly > out[j].Monthly
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Share returns the fraction of the monthly total a category accounts for.
func (s Summary) Share(c Category) float64 {
	if s.MonthlyTotal == 0 {
		return 0
	}
	return s.ByCategory[c] / s.MonthlyTotal
}
