package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	chartWidth    = 30
	notesMaxWidth = 40
)

// JSONOutput is the root JSON output object of the summary command
type JSONOutput struct {
	Items       []Record         `json:"items"`
	Summary     JSONSummary      `json:"summary"`
	Suggestions []JSONSuggestion `json:"suggestions"`
}

// JSONSummary contains aggregate statistics
type JSONSummary struct {
	Count        int                `json:"count"`
	MonthlyTotal float64            `json:"monthly_total"`
	AnnualTotal  float64            `json:"annual_total"`
	WhatIf       float64            `json:"what_if"`
	ByCategory   map[string]float64 `json:"by_category"`
	Currency     string             `json:"currency"`
}

type JSONSuggestion struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
	Tip     string  `json:"tip"`
}

func newJSONSummary(s Summary, currency string) JSONSummary {
	byCategory := make(map[string]float64, len(s.ByCategory))
	for c, m := range s.ByCategory {
		byCategory[string(c)] = m
	}
	return JSONSummary{
		Count:        s.ActiveCount,
		MonthlyTotal: s.MonthlyTotal,
		AnnualTotal:  s.AnnualTotal,
		WhatIf:       s.WhatIf,
		ByCategory:   byCategory,
		Currency:     currency,
	}
}

func newJSONSuggestions(suggestions []Suggestion) []JSONSuggestion {
	out := make([]JSONSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, JSONSuggestion{
			ID:      s.Record.ID,
			Name:    s.Record.Name,
			Monthly: s.Monthly,
			Annual:  s.Annual,
			Tip:     s.Tip,
		})
	}
	return out
}

// PrintRecordsJSON outputs the records as a JSON array
func PrintRecordsJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// PrintSummaryJSON outputs records, totals and suggestions in JSON format
func PrintSummaryJSON(w io.Writer, records []Record, s Summary, suggestions []Suggestion, currency string) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONOutput{
		Items:       records,
		Summary:     newJSONSummary(s, currency),
		Suggestions: newJSONSuggestions(suggestions),
	})
}

// PrintRecordsTable outputs the records as a formatted table with a
// monthly-equivalent column and a total footer.
func PrintRecordsTable(w io.Writer, records []Record, f Formatter) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	t.AppendHeader(table.Row{"ID", "Name", "Cost", "Cycle", "Category", "Started", "Notes", "Monthly"})

	var total float64
	for _, r := range records {
		monthly := ToMonthly(r.Cost, r.Cycle)
		total += monthly

		cycle := string(r.Cycle)
		if !r.Cycle.Known() {
			cycle = text.FgYellow.Sprint(cycle)
		}
		category := string(r.Category)
		if !r.Category.Known() {
			category = text.FgYellow.Sprint(category)
		}

		t.AppendRow(table.Row{
			text.FgHiBlack.Sprint(shortID(r.ID)),
			r.Name,
			f.Format(r.Cost),
			cycle,
			category,
			r.Start,
			truncate(r.Notes, notesMaxWidth),
			f.Format(monthly),
		})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "", "", "", "", text.Bold.Sprint("Total"), text.Bold.Sprint(f.Format(total))})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	t.Render()
}

// PrintSummary outputs the totals and a per-category bar chart
func PrintSummary(w io.Writer, s Summary, f Formatter) {
	fmt.Fprintf(w, "Monthly: %s\n", text.Bold.Sprint(f.Format(s.MonthlyTotal)))
	fmt.Fprintf(w, "Annual:  %s\n", text.Bold.Sprint(f.Format(s.AnnualTotal)))
	fmt.Fprintf(w, "Active subscriptions: %d\n", s.ActiveCount)
	if s.WhatIf != 0 {
		fmt.Fprintf(w, "What-if: %+g%%\n", s.WhatIf)
	}
	fmt.Fprintln(w)

	categories := s.Categories()
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories yet.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "Monthly", "Share", ""})
	for _, c := range categories {
		share := s.Share(c.Category)
		t.AppendRow(table.Row{
			string(c.Category),
			f.Format(c.Monthly),
			fmt.Sprintf("%.0f%%", share*100),
			text.FgCyan.Sprint(Bar(share, chartWidth)),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

// PrintSuggestions outputs the savings ideas
func PrintSuggestions(w io.Writer, suggestions []Suggestion, f Formatter) {
	fmt.Fprintln(w, text.Bold.Sprint("Quick savings ideas"))
	if len(suggestions) == 0 {
		fmt.Fprintln(w, "Add subscriptions to see ideas.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Monthly", "Annual", "Tip"})
	for _, s := range suggestions {
		t.AppendRow(table.Row{s.Record.Name, f.Format(s.Monthly), f.Format(s.Annual), s.Tip})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

// Bar renders share (0..1) as a horizontal bar of at most width cells.
func Bar(share float64, width int) string {
	if share <= 0 || math.IsNaN(share) {
		return ""
	}
	if share > 1 {
		share = 1
	}
	n := int(math.Round(share * float64(width)))
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// shortID shortens a uuid for display; any unique prefix is accepted by
// commands taking an id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
