package internal

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"9.99", 9.99},
		{"139", 139},
		{" 12.50 ", 12.5},
		{"12,50", 12.5},
		{"12abc", 12},
		{"12.5.3", 12.5},
		{".5", 0.5},
		{"abc", 0},
		{"", 0},
		{"-5", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e3", 1000},
		{"1,234.56", 1234.56},
		{"1.234,56", 1234.56},
		{"1,000,000", 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseCost(tt.input); got != tt.want {
				t.Errorf("ParseCost(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		cost float64
		want string
	}{
		{9.99, "9.99"},
		{139, "139"},
		{0, "0"},
		{12.5, "12.5"},
	}
	for _, tt := range tests {
		if got := FormatCost(tt.cost); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.cost, got, tt.want)
		}
	}
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(string(f))
		if err != nil || got != f {
			t.Errorf("ParseField(%q) = %q, %v", f, got, err)
		}
	}
	if got, err := ParseField(" Cost "); err != nil || got != FieldCost {
		t.Errorf("ParseField(\" Cost \") = %q, %v, want cost", got, err)
	}
	if _, err := ParseField("price"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("ParseField(price) error = %v, want ErrUnknownField", err)
	}
}

func TestRecord_SetCoerces(t *testing.T) {
	r := NewRecord()

	r.set(FieldCost, "abc")
	if r.Cost != 0 {
		t.Errorf("cost after non-numeric input = %v, want 0", r.Cost)
	}

	r.set(FieldCycle, "")
	if r.Cycle != CycleMonthly {
		t.Errorf("empty cycle = %q, want Monthly", r.Cycle)
	}

	r.set(FieldCategory, "Pets")
	if r.Category != "Pets" {
		t.Errorf("unknown category = %q, want it preserved", r.Category)
	}

	r.set(FieldCategory, "  ")
	if r.Category != CategoryOther {
		t.Errorf("blank category = %q, want Other", r.Category)
	}

	r.set(FieldNotes, "family, \"shared\"")
	if got := r.Get(FieldNotes); got != "family, \"shared\"" {
		t.Errorf("Get(notes) = %q", got)
	}
}

func TestRecord_UnmarshalJSON_Permissive(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Record
	}{
		{
			name: "complete",
			json: `{"id":"a","name":"Spotify","cost":9.99,"cycle":"Monthly","category":"Entertainment","start":"2024-01-01","notes":"duo"}`,
			want: Record{ID: "a", Name: "Spotify", Cost: 9.99, Cycle: CycleMonthly, Category: CategoryEntertainment, Start: "2024-01-01", Notes: "duo"},
		},
		{
			name: "missing fields get defaults",
			json: `{"name":"Gym"}`,
			want: Record{Name: "Gym", Cycle: CycleMonthly, Category: CategoryOther},
		},
		{
			name: "cost as string",
			json: `{"name":"X","cost":"12,50"}`,
			want: Record{Name: "X", Cost: 12.5, Cycle: CycleMonthly, Category: CategoryOther},
		},
		{
			name: "numbers and nulls in string fields",
			json: `{"id":7,"name":null,"cost":null,"notes":true}`,
			want: Record{ID: "7", Cycle: CycleMonthly, Category: CategoryOther, Notes: "true"},
		},
		{
			name: "negative cost",
			json: `{"name":"X","cost":-3}`,
			want: Record{Name: "X", Cycle: CycleMonthly, Category: CategoryOther},
		},
		{
			name: "unknown cycle preserved",
			json: `{"name":"X","cost":10,"cycle":"Biweekly"}`,
			want: Record{Name: "X", Cost: 10, Cycle: "Biweekly", Category: CategoryOther},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Record
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeRecords_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{not json`},
		{"object", `{"items":[]}`},
		{"scalar", `42`},
		{"null", `null`},
		{"element not object", `[{"name":"a"}, 3]`},
		{"null element", `[null]`},
		{"nested array element", `[[]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRecords([]byte(tt.data)); err == nil {
				t.Errorf("DecodeRecords(%s) succeeded, want error", tt.data)
			}
		})
	}
}

func TestDecodeRecords_EmptyArray(t *testing.T) {
	records, err := DecodeRecords([]byte(`[]`))
	if err != nil {
		t.Fatalf("DecodeRecords([]) error = %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("DecodeRecords([]) = %#v, want empty non-nil slice", records)
	}
}

func TestRecord_MarshalsEveryField(t *testing.T) {
	data, err := json.Marshal(Record{ID: "a", Name: "n"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"a","name":"n","cost":0,"cycle":"","category":"","start":"","notes":""}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestSeedRecords(t *testing.T) {
	seed := SeedRecords(nil)
	if len(seed) != 3 {
		t.Fatalf("len(SeedRecords(nil)) = %d, want 3", len(seed))
	}
	wantNames := []string{"Spotify", "Adobe Creative Cloud", "Prime"}
	ids := map[string]bool{}
	for i, r := range seed {
		if r.Name != wantNames[i] {
			t.Errorf("seed[%d].Name = %q, want %q", i, r.Name, wantNames[i])
		}
		if r.ID == "" || ids[r.ID] {
			t.Errorf("seed[%d].ID = %q, want fresh unique id", i, r.ID)
		}
		ids[r.ID] = true
	}
	if seed[2].Cycle != CycleAnnual || seed[2].Cost != 139 {
		t.Errorf("Prime = %+v, want 139 Annual", seed[2])
	}

	again := SeedRecords(nil)
	if again[0].ID == seed[0].ID {
		t.Error("SeedRecords should generate new ids on every call")
	}

	custom := SeedRecords([]Record{{Name: "Netflix", Cost: 15.49}})
	if len(custom) != 1 || custom[0].Name != "Netflix" || custom[0].Cycle != CycleMonthly || custom[0].Category != CategoryOther {
		t.Errorf("SeedRecords(custom) = %+v", custom)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much too long", 8, "much t.."},
		{"a" + strings.Repeat("é", 30), 10, "a" + strings.Repeat("é", 7) + ".."},
		{"日本語のメモです", 5, "日本語.."},
	}

	for _, tt := range tests {
		got := truncate(tt.input, tt.maxLen)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.input, tt.maxLen)
		}
	}
}
