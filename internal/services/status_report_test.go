package services

import (
	"context"
	"delivery-route-builder/internal/domain"
	"errors"
	"testing"
)

type memStatusStore struct {
	rows map[string]domain.StatusRow
	err  error
}

func (m *memStatusStore) SaveStatuses(ctx context.Context, rows []domain.StatusRow) error {
	if m.err != nil {
		return m.err
	}
	if m.rows == nil {
		m.rows = make(map[string]domain.StatusRow)
	}
	for _, r := range rows {
		m.rows[r.Title] = r
	}
	return nil
}

func (m *memStatusStore) ListStatuses(ctx context.Context) ([]domain.StatusRow, error) {
	out := make([]domain.StatusRow, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out, nil
}

func sampleRows() []domain.StatusRow {
	return []domain.StatusRow{
		{Title: "02.14 Eric", Flags: domain.FlagsThrough(domain.StageDistributed)},
		{Title: "02.14 Hank", Flags: domain.FlagsThrough(domain.StageWritable)},
		{Title: "02.14 Nos", Flags: domain.FlagsThrough(domain.StageOptimized)},
	}
}

func TestSummarizeCountsAreMonotonic(t *testing.T) {
	s := Summarize(sampleRows())

	want := Summary{Attempted: 3, Initialized: 3, Writable: 3, WithStops: 2, Optimized: 2, Distributed: 1}
	if s != want {
		t.Fatalf("summary = %+v, want %+v", s, want)
	}

	counts := []int{s.Attempted, s.Initialized, s.Writable, s.WithStops, s.Optimized, s.Distributed}
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[i-1] {
			t.Fatalf("count %d (%d) exceeds previous (%d)", i, counts[i], counts[i-1])
		}
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	rows := sampleRows()
	first := Summarize(rows)
	second := Summarize(rows)
	if first != second {
		t.Fatalf("summaries differ: %+v vs %+v", first, second)
	}
	if rows[1].Flags != domain.FlagsThrough(domain.StageWritable) {
		t.Fatalf("summarize modified rows")
	}
}

func TestSummaryString(t *testing.T) {
	rows := []domain.StatusRow{
		{Title: "a", Flags: domain.FlagsThrough(domain.StageDistributed)},
		{Title: "b", Flags: domain.FlagsThrough(domain.StageDistributed)},
		{Title: "c", Flags: domain.FlagsThrough(domain.StageDistributed)},
	}
	want := "Plans attempted: 3, initialized: 3, with stops: 3, optimized: 3, distributed: 3"
	if got := Summarize(rows).String(); got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}

func TestIncomplete(t *testing.T) {
	rows := sampleRows()

	got := Incomplete(rows, FinalStage(true))
	if len(got) != 2 || got[0] != "02.14 Hank" || got[1] != "02.14 Nos" {
		t.Fatalf("incomplete with distribution = %v", got)
	}

	got = Incomplete(rows, FinalStage(false))
	if len(got) != 1 || got[0] != "02.14 Hank" {
		t.Fatalf("incomplete without distribution = %v", got)
	}
}

func TestReporterRecordsToEveryStore(t *testing.T) {
	failing := &memStatusStore{err: errors.New("disk full")}
	ok := &memStatusStore{}
	r := &StatusReporter{}
	r.Stores = append(r.Stores, failing, ok)

	err := r.Record(context.Background(), sampleRows())
	if err == nil {
		t.Fatalf("expected error from failing store")
	}
	if len(ok.rows) != 3 {
		t.Fatalf("healthy store rows = %d, want 3", len(ok.rows))
	}
}

func TestReporterRejectsNonMonotonicRows(t *testing.T) {
	store := &memStatusStore{}
	r := &StatusReporter{}
	r.Stores = append(r.Stores, store)

	rows := []domain.StatusRow{{Title: "bad", Flags: domain.StageFlags{Optimized: true}}}
	if err := r.Record(context.Background(), rows); err == nil {
		t.Fatalf("expected error for non-monotonic flags")
	}
	if len(store.rows) != 0 {
		t.Fatalf("store written despite invalid rows")
	}
}
