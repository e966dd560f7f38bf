package tables

import (
	"context"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/platform/obs"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// StatusFileName is the status artifact written into the output directory.
const StatusFileName = "plan_status.csv"

var statusHeader = []string{"title", "initialized", "writable", "stops_uploaded", "optimized", "distributed"}

// StatusCSV keeps the per-unit flag table in a CSV file. Saving merges by
// title: existing rows are overwritten in place and new titles are appended.
type StatusCSV struct {
	Path string
}

func NewStatusCSV(dir string) *StatusCSV {
	return &StatusCSV{Path: filepath.Join(dir, StatusFileName)}
}

func (s *StatusCSV) SaveStatuses(ctx context.Context, rows []domain.StatusRow) (err error) {
	defer obs.Time(ctx, "status.csv.SaveStatuses")(&err)

	existing, err := s.read()
	if err != nil {
		return err
	}

	index := make(map[string]int, len(existing))
	for i, r := range existing {
		index[r.Title] = i
	}
	for _, r := range rows {
		if strings.TrimSpace(r.Title) == "" {
			return errors.New("save status csv: empty title")
		}
		if i, ok := index[r.Title]; ok {
			existing[i] = r
			continue
		}
		index[r.Title] = len(existing)
		existing = append(existing, r)
	}

	return s.write(existing)
}

// ListStatuses returns the file's rows ordered by title. Only titles and
// flags are stored in the CSV.
func (s *StatusCSV) ListStatuses(ctx context.Context) (_ []domain.StatusRow, err error) {
	defer obs.Time(ctx, "status.csv.ListStatuses")(&err)

	rows, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Title < rows[j].Title })
	return rows, nil
}

func (s *StatusCSV) read() ([]domain.StatusRow, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.StatusRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read status csv: open %q: %w", s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []domain.StatusRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read status csv: header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(statusHeader, ",") {
		return nil, fmt.Errorf("read status csv: unexpected header %v", header)
	}

	out := make([]domain.StatusRow, 0, 16)
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read status csv: line %d: %w", line, err)
		}

		flags := make([]bool, len(statusHeader)-1)
		for i := range flags {
			v, err := strconv.ParseBool(strings.TrimSpace(rec[i+1]))
			if err != nil {
				return nil, fmt.Errorf("read status csv: line %d column %s: %w", line, statusHeader[i+1], err)
			}
			flags[i] = v
		}
		out = append(out, domain.StatusRow{
			Title: rec[0],
			Flags: domain.StageFlags{
				Initialized:   flags[0],
				Writable:      flags[1],
				StopsUploaded: flags[2],
				Optimized:     flags[3],
				Distributed:   flags[4],
			},
		})
	}

	return out, nil
}

// write replaces the file through a temp file in the same directory.
func (s *StatusCSV) write(rows []domain.StatusRow) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write status csv: create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".plan_status-*.csv")
	if err != nil {
		return fmt.Errorf("write status csv: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(statusHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write status csv: header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Title}
		for _, v := range r.Flags.Slice() {
			rec = append(rec, strconv.FormatBool(v))
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write status csv: title=%q: %w", r.Title, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("write status csv: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write status csv: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("write status csv: replace %q: %w", s.Path, err)
	}
	return nil
}
