package tables

import (
	"delivery-route-builder/internal/domain"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var routeHeader = []string{"Stop #", "Name", "Address", "Phone", "Notes", "Order Count", "Box Type", "Neighborhood", "Email", "Driver"}

// RouteGroup is one route's manifest rows in stop order.
type RouteGroup struct {
	Title string
	Rows  []domain.ManifestRow
}

// GroupByRoute splits reconciled rows into routes, keeping first-seen order.
func GroupByRoute(rows []domain.ManifestRow) []RouteGroup {
	var groups []RouteGroup
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.RouteTitle]
		if !ok {
			i = len(groups)
			index[r.RouteTitle] = i
			groups = append(groups, RouteGroup{Title: r.RouteTitle})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// WriteRouteCSVs writes one <title>.csv per route into dir and returns the paths.
func WriteRouteCSVs(dir string, rows []domain.ManifestRow) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("write route csvs: create directory %q: %w", dir, err)
	}

	groups := GroupByRoute(rows)
	paths := make([]string, 0, len(groups))
	used := make(map[string]bool, len(groups))
	for _, g := range groups {
		path := filepath.Join(dir, uniqueFileName(g.Title, used)+".csv")
		if err := writeRouteCSV(path, g.Rows); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeRouteCSV(path string, rows []domain.ManifestRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write route csv: create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("write route csv: close %q: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(routeHeader); err != nil {
		return fmt.Errorf("write route csv: header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(routeRecord(r)); err != nil {
			return fmt.Errorf("write route csv: stop %d: %w", r.StopNo, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write route csv: flush %q: %w", path, err)
	}
	return nil
}

func routeRecord(r domain.ManifestRow) []string {
	return []string{
		strconv.Itoa(r.StopNo),
		r.Name,
		r.Address,
		r.Phone,
		r.Notes,
		strconv.Itoa(r.OrderCount),
		r.BoxType,
		r.Neighborhood,
		r.Email,
		r.DriverName,
	}
}

var fileNameReplacer = strings.NewReplacer("/", ".", "\\", ".", ":", "-")

func fileName(title string) string {
	name := strings.TrimSpace(fileNameReplacer.Replace(title))
	if name == "" {
		return "route"
	}
	return name
}

// uniqueFileName is fileName with a " (n)" suffix when another route in the
// same batch already mapped to that name. Comparison ignores case so that
// case-insensitive filesystems cannot collide either.
func uniqueFileName(title string, used map[string]bool) string {
	base := fileName(title)
	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = base + " (" + strconv.Itoa(n) + ")"
	}
	used[strings.ToLower(name)] = true
	return name
}
