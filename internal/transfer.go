package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidImport is returned for any import payload that can't be
// accepted. The store is never modified when it is returned.
var ErrInvalidImport = errors.New("invalid import file")

var ErrUnknownFormat = errors.New("unknown format")

// Payload is the result of decoding an import file.
type Payload struct {
	Items []Record
	// Currency is empty when the file didn't carry one.
	Currency string
}

// Document is the JSON export shape.
type Document struct {
	Currency string   `json:"currency"`
	Items    []Record `json:"items"`
}

// Importer decodes an import file.
type Importer interface {
	Import(data []byte) (Payload, error)
}

// ImporterFunc is a function that implements Importer
type ImporterFunc func(data []byte) (Payload, error)

func (f ImporterFunc) Import(data []byte) (Payload, error) {
	return f(data)
}

// Exporter encodes the current state.
type Exporter interface {
	Export(currency string, records []Record) ([]byte, error)
}

// ExporterFunc is a function that implements Exporter
type ExporterFunc func(currency string, records []Record) ([]byte, error)

func (f ExporterFunc) Export(currency string, records []Record) ([]byte, error) {
	return f(currency, records)
}

var (
	importers = map[string]Importer{}
	exporters = map[string]Exporter{}
)

// RegisterImporter registers an importer under a format name.
func RegisterImporter(format string, i Importer) {
	importers[format] = i
}

// RegisterExporter registers an exporter under a format name.
func RegisterExporter(format string, e Exporter) {
	exporters[format] = e
}

// GetImporter returns the importer for format.
func GetImporter(format string) (Importer, error) {
	i, ok := importers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownFormat, format, ImportFormats())
	}
	return i, nil
}

// GetExporter returns the exporter for format.
func GetExporter(format string) (Exporter, error) {
	e, ok := exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownFormat, format, ExportFormats())
	}
	return e, nil
}

// ImportFormats returns the registered import format names, sorted.
func ImportFormats() []string {
	return sortedKeys(importers)
}

// ExportFormats returns the registered export format names, sorted.
func ExportFormats() []string {
	return sortedKeys(exporters)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isKnownFormat(name string) bool {
	_, imp := importers[name]
	_, exp := exporters[name]
	return imp || exp
}

// ParseFileArg splits a file argument that may carry a format prefix.
// Example: "xlsx:backup.xlsx" → ("xlsx", "backup.xlsx")
// Example: "backup.json" → ("", "backup.json")
// Example: "C:\data\subs.json" → ("", "C:\data\subs.json")
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if isKnownFormat(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg
}

// FormatForPath guesses a format from a file extension, defaulting to json.
func FormatForPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if isKnownFormat(ext) {
		return ext
	}
	return "json"
}

// ExportJSON renders the full state as pretty-printed JSON.
func ExportJSON(currency string, records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(Document{Currency: currency, Items: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// ImportJSON accepts either a bare array of records or an object with an
// "items" array and an optional "currency".
func ImportJSON(data []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Payload{}, fmt.Errorf("%w: empty file", ErrInvalidImport)
	}

	if trimmed[0] == '[' {
		items, err := DecodeRecords(trimmed)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		return Payload{Items: items}, nil
	}

	var doc struct {
		Currency json.RawMessage `json:"currency"`
		Items    json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if len(doc.Items) == 0 {
		return Payload{}, fmt.Errorf("%w: no items found", ErrInvalidImport)
	}
	items, err := DecodeRecords(doc.Items)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: items: %v", ErrInvalidImport, err)
	}
	return Payload{Items: items, Currency: coerceString(doc.Currency)}, nil
}

var csvHeader = []string{"Name", "Cost", "Cycle", "Category", "Started", "Notes"}

// ExportCSV renders one row per record. Every field is quoted, whether or
// not it needs to be, so the output is predictable.
func ExportCSV(records []Record) []byte {
	var b strings.Builder
	writeCSVRow(&b, csvHeader)
	for _, r := range records {
		b.WriteByte('\n')
		writeCSVRow(&b, []string{r.Name, FormatCost(r.Cost), string(r.Cycle), string(r.Category), r.Start, r.Notes})
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

func init() {
	RegisterImporter("json", ImporterFunc(ImportJSON))
	RegisterExporter("json", ExporterFunc(ExportJSON))
	RegisterExporter("csv", ExporterFunc(func(_ string, records []Record) ([]byte, error) {
		return ExportCSV(records), nil
	}))
}
