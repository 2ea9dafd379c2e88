// Package workbook writes report sections to an xlsx file, one sheet per
// section.
package workbook

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"recon-backend/internal/report"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Writer renders sections with a single font applied to every written cell.
type Writer struct {
	font string
}

func NewWriter(font string) *Writer {
	return &Writer{font: font}
}

// Build returns the in-memory workbook. Sections sharing a sheet name
// (compared case-insensitively, as spreadsheet apps do) collapse into one
// sheet: it stays where the first one appeared and holds the last one's rows.
func (w *Writer) Build(sections []report.Section) (*excelize.File, error) {
	const op = "build"

	f := excelize.NewFile()
	fail := func(err error) (*excelize.File, error) {
		f.Close()
		return nil, &WriteError{Op: op, Err: err}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Family: w.font}})
	if err != nil {
		return fail(err)
	}

	named := make([]report.Section, len(sections))
	for i, s := range sections {
		s.ID = sheetName(s)
		named[i] = s
	}

	for i, s := range dedupe(named) {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, s.ID)
		} else {
			_, err = f.NewSheet(s.ID)
		}
		if err != nil {
			return fail(err)
		}
		if err := writeRows(f, s.ID, s.Rows, style); err != nil {
			return fail(err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook to out.
func (w *Writer) Write(out io.Writer, sections []report.Section) error {
	f, err := w.Build(sections)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

// SaveFile writes the workbook to path through a temporary file in the same
// directory, so a failed write never leaves a partial file behind.
func (w *Writer) SaveFile(path string, sections []report.Section) error {
	const op = "save"

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Op: op, Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".recon-*.xlsx.tmp")
	if err != nil {
		return &WriteError{Op: op, Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := w.Write(tmp, sections); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Op: op, Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Op: op, Path: path, Err: err}
	}
	return nil
}

// sheetName maps a section ID to a name excelize accepts. Sheet names may not
// start or end with a single quote; when nothing else is left the partner
// code is used.
func sheetName(s report.Section) string {
	if name := strings.Trim(s.ID, "'"); name != "" {
		return name
	}
	if s.ID == "" {
		return ""
	}
	return strings.Trim(report.SectionID(s.Partner.Code), "'")
}

func dedupe(sections []report.Section) []report.Section {
	index := make(map[string]int, len(sections))
	out := make([]report.Section, 0, len(sections))
	for _, s := range sections {
		key := strings.ToLower(s.ID)
		if i, ok := index[key]; ok {
			id := out[i].ID
			out[i] = s
			out[i].ID = id
			continue
		}
		index[key] = len(out)
		out = append(out, s)
	}
	return out
}

func writeRows(f *excelize.File, sheet string, rows []report.Row, style int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		first, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(row), i+1)
		if err != nil {
			return err
		}

		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		if err := f.SetSheetRow(sheet, first, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, first, last, style); err != nil {
			return err
		}
	}
	return nil
}

// cellValue keeps money numeric in the sheet.
func cellValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}
