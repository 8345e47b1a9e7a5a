package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Cycle is the billing cycle a record's cost is denominated in.
// Unknown values are kept as-is and treated as already monthly.
type Cycle string

const (
	CycleWeekly    Cycle = "Weekly"
	CycleMonthly   Cycle = "Monthly"
	CycleQuarterly Cycle = "Quarterly"
	CycleAnnual    Cycle = "Annual"
)

// Cycles lists the billing cycles offered by the pickers, in display order.
var Cycles = []Cycle{CycleWeekly, CycleMonthly, CycleQuarterly, CycleAnnual}

// Known reports whether c is one of the enumerated cycles.
func (c Cycle) Known() bool {
	for _, k := range Cycles {
		if c == k {
			return true
		}
	}
	return false
}

// Category groups records for the per-category breakdown. Like Cycle,
// unknown values are preserved and aggregate under their own key.
type Category string

const (
	CategoryEntertainment Category = "Entertainment"
	CategoryWork          Category = "Work"
	CategoryProductivity  Category = "Productivity"
	CategoryUtilities     Category = "Utilities"
	CategoryEducation     Category = "Education"
	CategoryShopping      Category = "Shopping"
	CategoryOther         Category = "Other"
)

// Categories lists the categories offered by the pickers, in display order.
var Categories = []Category{
	CategoryEntertainment,
	CategoryWork,
	CategoryProductivity,
	CategoryUtilities,
	CategoryEducation,
	CategoryShopping,
	CategoryOther,
}

// Known reports whether c is one of the enumerated categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Record is a single recurring payment.
type Record struct {
	ID       string   `json:"id" yaml:"id,omitempty"`
	Name     string   `json:"name" yaml:"name"`
	Cost     float64  `json:"cost" yaml:"cost"`
	Cycle    Cycle    `json:"cycle" yaml:"cycle,omitempty"`
	Category Category `json:"category" yaml:"category,omitempty"`
	Start    string   `json:"start" yaml:"start,omitempty"` // YYYY-MM-DD or empty
	Notes    string   `json:"notes" yaml:"notes,omitempty"`
}

// Field names an editable record attribute.
type Field string

const (
	FieldName     Field = "name"
	FieldCost     Field = "cost"
	FieldCycle    Field = "cycle"
	FieldCategory Field = "category"
	FieldStart    Field = "start"
	FieldNotes    Field = "notes"
)

// Fields lists the editable fields in grid column order.
var Fields = []Field{FieldName, FieldCost, FieldCycle, FieldCategory, FieldStart, FieldNotes}

var ErrUnknownField = errors.New("unknown field")

// ParseField maps a user-supplied field name (case-insensitive) to a Field.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %v)", ErrUnknownField, s, Fields)
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// NewRecord returns an empty record with default cycle and category, as
// created by the "add" action.
func NewRecord() Record {
	return Record{Cycle: CycleMonthly, Category: CategoryOther}
}

// Get returns the display value of a field.
func (r Record) Get(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldCost:
		return FormatCost(r.Cost)
	case FieldCycle:
		return string(r.Cycle)
	case FieldCategory:
		return string(r.Category)
	case FieldStart:
		return r.Start
	case FieldNotes:
		return r.Notes
	}
	return ""
}

// set applies a raw string value to a field, coercing where needed.
func (r *Record) set(f Field, value string) {
	switch f {
	case FieldName:
		r.Name = value
	case FieldCost:
		r.Cost = ParseCost(value)
	case FieldCycle:
		r.Cycle = Cycle(value)
	case FieldCategory:
		r.Category = Category(value)
	case FieldStart:
		r.Start = value
	case FieldNotes:
		r.Notes = value
	}
	r.normalize()
}

// normalize enforces the record invariants that don't depend on the
// surrounding collection.
func (r *Record) normalize() {
	r.Cost = sanitizeCost(r.Cost)
	if strings.TrimSpace(string(r.Cycle)) == "" {
		r.Cycle = CycleMonthly
	}
	if strings.TrimSpace(string(r.Category)) == "" {
		r.Category = CategoryOther
	}
}

func sanitizeCost(c float64) float64 {
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return 0
	}
	return c
}

// ParseCost converts user input to a cost. A comma decimal separator is
// accepted and trailing garbage after a numeric prefix is ignored ("12abc"
// is 12). Anything without a numeric prefix is 0.
func ParseCost(s string) float64 {
	s = normalizeDecimal(strings.TrimSpace(s))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return sanitizeCost(v)
	}
	end := 0
	seenDot := false
scan:
	for i, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			end = i + 1
		case ch == '.' && !seenDot:
			seenDot = true
		case (ch == '-' || ch == '+') && i == 0:
		default:
			break scan
		}
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return sanitizeCost(v)
}

// normalizeDecimal rewrites s to use '.' as the decimal separator. When both
// '.' and ',' occur, the one appearing last is the decimal separator and the
// other is dropped as a thousands separator ("1,234.56" and "1.234,56" are
// both 1234.56). A single comma is a decimal separator ("12,50" is 12.5);
// repeated commas are thousands separators.
func normalizeDecimal(s string) string {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case comma < 0:
		return s
	case dot < 0 && strings.Count(s, ",") > 1:
		return strings.ReplaceAll(s, ",", "")
	case dot < 0:
		return strings.ReplaceAll(s, ",", ".")
	case comma > dot:
		return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}

// FormatCost renders a cost in its shortest round-trip form ("9.99", "139").
func FormatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// UnmarshalJSON decodes a record permissively: it must be a JSON object,
// but any field may be missing or of the wrong type. This is the single
// coercion point for everything read back from storage or an import.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return fmt.Errorf("record is not an object: %s", truncate(string(data), 40))
	}
	*r = Record{
		ID:       coerceString(raw["id"]),
		Name:     coerceString(raw["name"]),
		Cost:     coerceCost(raw["cost"]),
		Cycle:    Cycle(coerceString(raw["cycle"])),
		Category: Category(coerceString(raw["category"])),
		Start:    coerceString(raw["start"]),
		Notes:    coerceString(raw["notes"]),
	}
	r.normalize()
	return nil
}

func coerceString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

func coerceCost(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return sanitizeCost(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseCost(s)
	}
	return 0
}

// DecodeRecords decodes a JSON array of record objects. Anything that is
// not an array of objects is rejected.
func DecodeRecords(data []byte) ([]Record, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("expected an array of records: %w", err)
	}
	if elems == nil {
		return nil, errors.New("expected an array of records, got null")
	}
	records := make([]Record, 0, len(elems))
	for i, elem := range elems {
		var r Record
		if err := json.Unmarshal(elem, &r); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// DefaultSeed is the example data used when nothing valid has been stored yet.
var DefaultSeed = []Record{
	{Name: "Spotify", Cost: 9.99, Cycle: CycleMonthly, Category: CategoryEntertainment},
	{Name: "Adobe Creative Cloud", Cost: 54.99, Cycle: CycleMonthly, Category: CategoryWork},
	{Name: "Prime", Cost: 139, Cycle: CycleAnnual, Category: CategoryShopping},
}

// SeedRecords returns a copy of seed with fresh ids, falling back to
// DefaultSeed when seed is empty.
func SeedRecords(seed []Record) []Record {
	if len(seed) == 0 {
		seed = DefaultSeed
	}
	out := make([]Record, len(seed))
	for i, r := range seed {
		r.ID = NewID()
		r.normalize()
		out[i] = r
	}
	return out
}

// truncate shortens s to at most maxLen runes, marking the cut with "..".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-2]) + ".."
}
