// Package export writes RetrieveMultiple results as spreadsheets.
package export

import (
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/orgfake/internal/engine"
	"github.com/roach88/orgfake/internal/ir"
)

// SummarySheet holds the paging outcome of the exported result.
const SummarySheet = "summary"

// maxSheetName is the spreadsheet format's limit on sheet name length.
const maxSheetName = 31

// WriteXLSX writes res as a workbook with two sheets. The first is named
// after the entity and holds one row per record: an "id" column, then
// every attribute that appears in any record in ordinal name order. Cells
// show the formatted value when the record has one. The second sheet is
// SummarySheet.
func WriteXLSX(w io.Writer, res *engine.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(res.EntityName)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := Columns(res.Records)
	row := make([]any, 0, len(header)+1)
	row = append(row, "id")
	for _, col := range header {
		row = append(row, col)
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, rec := range res.Records {
		row = row[:0]
		if rec.ID == uuid.Nil {
			row = append(row, "")
		} else {
			row = append(row, rec.ID.String())
		}
		for _, col := range header {
			row = append(row, cellValue(rec, col))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	if err := writeSummary(f, res); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Columns returns the union of attribute names across recs in ordinal
// order.
func Columns(recs []*ir.Record) []string {
	seen := map[string]bool{}
	var cols []string
	for _, rec := range recs {
		for name := range rec.Attributes {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	slices.SortFunc(cols, ir.CompareOrdinal)
	return cols
}

func writeSummary(f *excelize.File, res *engine.Result) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	rows := [][]any{
		{"entity", res.EntityName},
		{"records", len(res.Records)},
		{"more_records", res.MoreRecords},
		{"total_record_count", res.TotalRecordCount},
		{"paging_cookie", res.PagingCookie},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return fmt.Errorf("summary: %w", err)
		}
	}
	return nil
}

func cellValue(rec *ir.Record, attr string) any {
	if s, ok := rec.FormattedValues[attr]; ok {
		return s
	}
	switch v := ir.Unwrap(rec.Get(attr)).(type) {
	case ir.Null:
		return nil
	case ir.Int:
		return int64(v)
	case ir.Bool:
		return bool(v)
	case ir.DateTime:
		return v.Time
	case ir.Decimal:
		if f, err := v.Apd().Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return ir.Text(v)
	}
}

func sheetName(entity string) string {
	if entity == "" {
		return "records"
	}
	if len(entity) > maxSheetName {
		return entity[:maxSheetName]
	}
	return entity
}
