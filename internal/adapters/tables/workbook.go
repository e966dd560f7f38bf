package tables

import (
	"delivery-route-builder/internal/domain"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WorkbookFileName is the combined routes workbook written by fetch.
const WorkbookFileName = "routes.xlsx"

// maxSheetName is Excel's sheet name length limit.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "-", "\\", ".", "/", ".", "?", "", "*", "", "[", "(", "]", ")",
)

// WriteWorkbook writes every route to its own sheet of a single workbook.
func WriteWorkbook(path string, rows []domain.ManifestRow) error {
	groups := GroupByRoute(rows)
	if len(groups) == 0 {
		return fmt.Errorf("write workbook: no routes to write")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write workbook: create directory for %q: %w", path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool, len(groups))
	for i, g := range groups {
		name := SheetName(g.Title, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("write workbook: rename first sheet to %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("write workbook: add sheet %q: %w", name, err)
		}

		header := make([]interface{}, len(routeHeader))
		for j, h := range routeHeader {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write workbook: sheet %q header: %w", name, err)
		}

		for j, r := range g.Rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return fmt.Errorf("write workbook: sheet %q row %d: %w", name, j+2, err)
			}
			values := []interface{}{
				r.StopNo, r.Name, r.Address, r.Phone, r.Notes,
				r.OrderCount, r.BoxType, r.Neighborhood, r.Email, r.DriverName,
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("write workbook: sheet %q stop %d: %w", name, r.StopNo, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook: save %q: %w", path, err)
	}
	return nil
}

// SheetName makes title a valid, unused sheet name and marks it used.
func SheetName(title string, used map[string]bool) string {
	base := strings.TrimSpace(sheetNameReplacer.Replace(title))
	if base == "" {
		base = "Route"
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
