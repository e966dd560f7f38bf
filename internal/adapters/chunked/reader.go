package chunked

import (
	"delivery-route-builder/internal/domain"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column headers of the chunked sheet.
const (
	ColDriver       = "Driver"
	ColStopNo       = "Stop #"
	ColName         = "Name"
	ColAddress      = "Address"
	ColPhone        = "Phone"
	ColEmail        = "Email"
	ColNotes        = "Notes"
	ColOrderCount   = "Order Count"
	ColBoxType      = "Box Type"
	ColNeighborhood = "Neighborhood"
)

var requiredColumns = []string{ColDriver, ColName, ColAddress}

var optionalColumns = []string{ColStopNo, ColPhone, ColEmail, ColNotes, ColOrderCount, ColBoxType, ColNeighborhood}

// InputError reports a malformed chunked sheet. Row is the 1-based sheet row,
// or 0 when the problem is with the file or header as a whole.
type InputError struct {
	Row    int
	Column string
	Reason string
}

func (e *InputError) Error() string {
	switch {
	case e.Row == 0 && e.Column == "":
		return "chunked input: " + e.Reason
	case e.Row == 0:
		return fmt.Sprintf("chunked input: column %q: %s", e.Column, e.Reason)
	default:
		return fmt.Sprintf("chunked input: row %d column %q: %s", e.Row, e.Column, e.Reason)
	}
}

// Options selects the sheet of an .xlsx file. Empty means the first sheet.
type Options struct {
	Sheet string
}

// ReadFile reads chunked stops from an .xlsx or .csv file.
func ReadFile(path string, opts Options) ([]domain.ChunkedStop, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path, opts.Sheet)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, &InputError{Reason: fmt.Sprintf("unsupported file type %q (want .xlsx or .csv)", filepath.Ext(path))}
	}
	if err != nil {
		return nil, err
	}

	return Parse(records)
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunked workbook: open %q: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &InputError{Reason: fmt.Sprintf("sheet %q not found in %s", sheet, filepath.Base(path))}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read chunked workbook: sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read chunked csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read chunked csv: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Parse converts raw sheet records, header first, into chunked stops.
// Fully blank rows are skipped.
func Parse(records [][]string) ([]domain.ChunkedStop, error) {
	if len(records) == 0 {
		return nil, &InputError{Reason: "file is empty"}
	}

	cols, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	stops := make([]domain.ChunkedStop, 0, len(records)-1)
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		stop, err := parseRow(i+2, rec, cols)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}

	if len(stops) == 0 {
		return nil, &InputError{Reason: "no stops found"}
	}
	return stops, nil
}

func mapHeader(header []string) (map[string]int, error) {
	known := make(map[string]string, len(requiredColumns)+len(optionalColumns))
	for _, c := range append(append([]string{}, requiredColumns...), optionalColumns...) {
		known[headerKey(c)] = c
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name, ok := known[headerKey(h)]
		if !ok {
			continue
		}
		if _, dup := cols[name]; dup {
			return nil, &InputError{Column: name, Reason: "column appears more than once"}
		}
		cols[name] = i
	}

	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, &InputError{Column: c, Reason: "required column missing"}
		}
	}
	return cols, nil
}

func headerKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func parseRow(row int, rec []string, cols map[string]int) (domain.ChunkedStop, error) {
	cell := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	stop := domain.ChunkedStop{
		DriverLabel:  cell(ColDriver),
		Name:         cell(ColName),
		Address:      cell(ColAddress),
		Phone:        cell(ColPhone),
		Email:        cell(ColEmail),
		Notes:        cell(ColNotes),
		Neighborhood: cell(ColNeighborhood),
	}

	if stop.DriverLabel == "" {
		return stop, &InputError{Row: row, Column: ColDriver, Reason: "empty driver"}
	}
	if stop.Address == "" {
		return stop, &InputError{Row: row, Column: ColAddress, Reason: "empty address"}
	}

	if v := cell(ColStopNo); v != "" {
		n, err := wholeNumber(v)
		if err != nil || n < 1 {
			return stop, &InputError{Row: row, Column: ColStopNo, Reason: fmt.Sprintf("invalid stop number %q", v)}
		}
		stop.StopNo = n
	}

	if v := cell(ColOrderCount); v != "" {
		n, err := wholeNumber(v)
		if err != nil || n < 1 {
			return stop, &InputError{Row: row, Column: ColOrderCount, Reason: fmt.Sprintf("invalid order count %q", v)}
		}
		stop.OrderCount = n
	}

	if v := cell(ColBoxType); v != "" {
		if !domain.IsBoxType(v) {
			return stop, &InputError{Row: row, Column: ColBoxType, Reason: fmt.Sprintf("unknown box type %q", v)}
		}
		stop.BoxType = strings.ToUpper(v)
	}

	return stop, nil
}

// wholeNumber accepts "3" and spreadsheet renderings such as "3.0".
func wholeNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
