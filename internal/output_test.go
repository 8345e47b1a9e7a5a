package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestBar(t *testing.T) {
	tests := []struct {
		share float64
		width int
		want  int
	}{
		{0, 10, 0},
		{-1, 10, 0},
		{0.5, 10, 5},
		{1, 10, 10},
		{2, 10, 10},
		{0.01, 10, 1},
	}
	for _, tt := range tests {
		got := Bar(tt.share, tt.width)
		if n := strings.Count(got, "█"); n != tt.want {
			t.Errorf("Bar(%v, %d) has %d cells, want %d", tt.share, tt.width, n, tt.want)
		}
	}
}

func TestPrintRecordsJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintRecordsJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("PrintRecordsJSON(nil) = %q, want []", buf.String())
	}
}

func TestPrintSummaryJSON(t *testing.T) {
	records := []Record{
		{ID: "1", Name: "Spotify", Cost: 10, Cycle: CycleMonthly, Category: CategoryEntertainment},
		{ID: "2", Name: "Prime", Cost: 120, Cycle: CycleAnnual, Category: CategoryShopping},
	}
	s := Summarize(records, 0)

	var buf bytes.Buffer
	if err := PrintSummaryJSON(&buf, records, s, Suggest(records), "€"); err != nil {
		t.Fatal(err)
	}

	var out JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Items) != 2 {
		t.Errorf("Items = %d, want 2", len(out.Items))
	}
	if out.Summary.Count != 2 || out.Summary.Currency != "€" {
		t.Errorf("Summary = %+v", out.Summary)
	}
	if !approx(out.Summary.MonthlyTotal, 20) || !approx(out.Summary.AnnualTotal, 240) {
		t.Errorf("totals = %v / %v, want 20 / 240", out.Summary.MonthlyTotal, out.Summary.AnnualTotal)
	}
	if !approx(out.Summary.ByCategory["Shopping"], 10) {
		t.Errorf("ByCategory = %v", out.Summary.ByCategory)
	}
	if len(out.Suggestions) != 2 || out.Suggestions[0].Tip == "" {
		t.Errorf("Suggestions = %+v", out.Suggestions)
	}
}

func TestPrintRecordsTable(t *testing.T) {
	records := []Record{
		{ID: "0123456789abcdef", Name: "Spotify", Cost: 9.99, Cycle: CycleMonthly, Category: CategoryEntertainment},
		{ID: "fedcba9876543210", Name: "Prime", Cost: 120, Cycle: CycleAnnual, Category: CategoryShopping},
	}

	var buf bytes.Buffer
	PrintRecordsTable(&buf, records, NewFormatter("$", language.English))
	out := buf.String()

	for _, want := range []string{"Spotify", "Prime", "01234567", "$9.99", "$120.00", "$19.99", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Error("ids should be shortened in the table")
	}
}

func TestPrintSummary(t *testing.T) {
	f := NewFormatter("$", language.English)

	var buf bytes.Buffer
	PrintSummary(&buf, Summarize(nil, 0), f)
	if !strings.Contains(buf.String(), "No categories yet.") {
		t.Errorf("empty summary output = %q", buf.String())
	}

	buf.Reset()
	records := []Record{{Name: "Gym", Cost: 30, Cycle: CycleMonthly, Category: CategoryOther}}
	PrintSummary(&buf, Summarize(records, 10), f)
	out := buf.String()
	for _, want := range []string{"$33.00", "$396.00", "What-if: +10%", "Other", "100%"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSuggestions_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintSuggestions(&buf, nil, NewFormatter("$", language.English))
	if !strings.Contains(buf.String(), "Add subscriptions to see ideas.") {
		t.Errorf("output = %q", buf.String())
	}
}
