// Package report writes batch extraction results as JSON lines or as an XLSX
// workbook.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"extractd/internal/extract"
)

// Row is one processed input line.
type Row struct {
	ID     string
	Text   string
	Result extract.Result
}

// Writer receives rows in input order. Close flushes buffered output.
type Writer interface {
	Write(Row) error
	Close() error
}

// Create opens path and picks the format by extension: .xlsx for a workbook,
// anything else for JSON lines. "-" writes JSON lines to stdout.
func Create(path string) (Writer, error) {
	if path == "" || path == "-" {
		return NewJSONL(nopCloser{os.Stdout}), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return NewXLSX(f), nil
	}
	return NewJSONL(f), nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// JSONLWriter writes one JSON object per row.
type JSONLWriter struct {
	w   io.WriteCloser
	enc *json.Encoder
}

// NewJSONL returns a writer that owns w and closes it in Close.
func NewJSONL(w io.WriteCloser) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{w: w, enc: enc}
}

type jsonlRecord struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	extract.Result
}

func (j *JSONLWriter) Write(r Row) error {
	return j.enc.Encode(jsonlRecord{ID: r.ID, Text: r.Text, Result: r.Result})
}

func (j *JSONLWriter) Close() error { return j.w.Close() }

// Sheet is the worksheet name used by XLSXWriter.
const Sheet = "Extractions"

var headers = []string{"ID", "Text", "TaxID", "FullName", "Method", "Error", "RawModelOutput"}

// XLSXWriter accumulates rows in a workbook written out on Close.
type XLSXWriter struct {
	w   io.WriteCloser
	f   *excelize.File
	row int
	err error
}

// NewXLSX returns a writer that owns w and closes it in Close.
func NewXLSX(w io.WriteCloser) *XLSXWriter {
	f := excelize.NewFile()
	x := &XLSXWriter{w: w, f: f, row: 1}
	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		x.err = err
		return x
	}
	x.writeRow(toAny(headers))
	_ = f.SetColWidth(Sheet, "A", "A", 38) // id
	_ = f.SetColWidth(Sheet, "B", "B", 60) // text
	_ = f.SetColWidth(Sheet, "C", "C", 16) // tax id
	_ = f.SetColWidth(Sheet, "D", "D", 32) // name
	_ = f.SetColWidth(Sheet, "E", "E", 18) // method
	_ = f.SetColWidth(Sheet, "F", "G", 48)
	return x
}

func (x *XLSXWriter) Write(r Row) error {
	if x.err != nil {
		return x.err
	}
	res := r.Result
	x.writeRow([]any{r.ID, r.Text, res.TaxIDValue(), res.FullNameValue(), string(res.Method), res.ErrorValue(), res.RawModelOutputValue()})
	return x.err
}

func (x *XLSXWriter) writeRow(vals []any) {
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err == nil {
		err = x.f.SetSheetRow(Sheet, cell, &vals)
	}
	if err != nil && x.err == nil {
		x.err = fmt.Errorf("xlsx row %d: %w", x.row, err)
	}
	x.row++
}

// Close writes the workbook and closes the underlying writer.
func (x *XLSXWriter) Close() error {
	defer x.w.Close()
	defer x.f.Close()
	if x.err != nil {
		return x.err
	}
	if _, err := x.f.WriteTo(x.w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
