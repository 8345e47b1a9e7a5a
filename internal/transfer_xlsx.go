package internal

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Subscriptions"

var xlsxHeader = []string{"ID", "Name", "Cost", "Cycle", "Category", "Started", "Notes"}

// ExportXLSX writes the records to a single-sheet workbook. The currency
// symbol is not part of the sheet; costs are stored as numbers.
func ExportXLSX(_ string, records []Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(xlsxSheet, "A1", &xlsxHeader); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{r.ID, r.Name, r.Cost, string(r.Cycle), string(r.Category), r.Start, r.Notes}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportXLSX reads records from the first sheet of a workbook. The header
// row is located by column names, so extra columns and leading rows are
// tolerated. "Started" and "Start" are both accepted for the start date.
func ImportXLSX(data []byte) (Payload, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: opening workbook: %v", ErrInvalidImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Payload{}, fmt.Errorf("%w: no sheets found in file", ErrInvalidImport)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Payload{}, fmt.Errorf("%w: reading sheet: %v", ErrInvalidImport, err)
	}

	cols := map[string]int{}
	dataStartRow := -1
	for i, row := range rows {
		found := map[string]int{}
		for j, cell := range row {
			switch strings.ToLower(strings.TrimSpace(cell)) {
			case "id":
				found["id"] = j
			case "name":
				found["name"] = j
			case "cost":
				found["cost"] = j
			case "cycle":
				found["cycle"] = j
			case "category":
				found["category"] = j
			case "started", "start":
				found["start"] = j
			case "notes":
				found["notes"] = j
			}
		}
		_, hasName := found["name"]
		_, hasCost := found["cost"]
		if hasName && hasCost {
			cols = found
			dataStartRow = i + 1
			break
		}
	}
	if dataStartRow < 0 {
		return Payload{}, fmt.Errorf("%w: could not find required columns (Name, Cost)", ErrInvalidImport)
	}

	cell := func(row []string, key string) string {
		j, ok := cols[key]
		if !ok || j >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[j])
	}

	items := []Record{}
	for _, row := range rows[dataStartRow:] {
		if isEmptyRow(row) {
			continue
		}
		r := Record{
			ID:       cell(row, "id"),
			Name:     cell(row, "name"),
			Cost:     ParseCost(cell(row, "cost")),
			Cycle:    Cycle(cell(row, "cycle")),
			Category: Category(cell(row, "category")),
			Start:    cell(row, "start"),
			Notes:    cell(row, "notes"),
		}
		r.normalize()
		items = append(items, r)
	}
	return Payload{Items: items}, nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func init() {
	RegisterImporter("xlsx", ImporterFunc(ImportXLSX))
	RegisterExporter("xlsx", ExporterFunc(ExportXLSX))
}
