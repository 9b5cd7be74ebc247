// Package spreadsheet reads tabular uploads (.xlsx or .csv) into header-keyed rows.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Row is one non-blank data row. Number is the 1-based sheet row (the header is row 1).
type Row struct {
	Number int
	Cells  map[string]string
}

// Get returns the trimmed cell under the normalised header name.
func (r Row) Get(header string) string {
	return r.Cells[NormalizeHeader(header)]
}

// Sheet is a parsed first sheet.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// Parse reads the upload, choosing the decoder from the file extension.
func Parse(r io.Reader, filename string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func parseXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Sheet{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return build(rows), nil
}

func parseCSV(r io.Reader) (*Sheet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return build(rows), nil
}

func build(rows [][]string) *Sheet {
	sheet := &Sheet{}
	if len(rows) == 0 {
		return sheet
	}
	sheet.Headers = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		sheet.Headers[i] = NormalizeHeader(h)
	}
	for idx, cols := range rows[1:] {
		cells := make(map[string]string, len(sheet.Headers))
		blank := true
		for i, h := range sheet.Headers {
			if h == "" || i >= len(cols) {
				continue
			}
			v := strings.TrimSpace(cols[i])
			if v != "" {
				blank = false
			}
			cells[h] = v
		}
		if blank {
			continue
		}
		sheet.Rows = append(sheet.Rows, Row{Number: idx + 2, Cells: cells})
	}
	return sheet
}

// NormalizeHeader lower-cases a header, maps underscores to spaces and collapses whitespace.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.ReplaceAll(h, "_", " "))
	return strings.Join(strings.Fields(h), " ")
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"01-02-06",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate accepts ISO dates, day-first slashed dates, excelize's default
// mm-dd-yy rendering and raw Excel serial numbers.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
