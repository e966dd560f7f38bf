package cli

import (
	"bytes"
	"context"
	"delivery-route-builder/internal/adapters/circuit"
	"delivery-route-builder/internal/adapters/tables"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/services"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func seedPlan(t *testing.T, svc *circuit.MockService, title, driverID string, stops []domain.ChunkedStop, optimize bool) {
	t.Helper()
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, title, time.Date(2025, 2, 14, 0, 0, 0, 0, time.Local), driverID)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if err := svc.UploadStops(ctx, plan.ID, stops); err != nil {
		t.Fatalf("upload stops: %v", err)
	}
	if optimize {
		if _, err := svc.StartOptimization(ctx, plan.ID); err != nil {
			t.Fatalf("optimize: %v", err)
		}
	}
}

func TestRunFetchWritesRouteFiles(t *testing.T) {
	color.NoColor = true

	svc := circuit.NewMockService([]domain.Driver{
		{ID: "drivers/eric", Name: "Eric Smith", Active: true},
		{ID: "drivers/hank", Name: "Hank Hill", Active: true},
	})
	seedPlan(t, svc, "02.14 Eric", "drivers/eric", []domain.ChunkedStop{
		{Name: "Ada", Address: "1 Main St, Ballard, Seattle", OrderCount: 1, BoxType: "GF", Neighborhood: "Ballard"},
		{Name: "Bo", Address: "2 Main St, Ballard, Seattle", OrderCount: 2, BoxType: "BASIC", Neighborhood: "Ballard"},
	}, true)
	seedPlan(t, svc, "02.14 Hank", "drivers/hank", []domain.ChunkedStop{
		{Name: "Cy", Address: "3 Pine St, Fremont, Seattle", OrderCount: 1, BoxType: "VEGAN", Neighborhood: "Fremont"},
	}, false)

	fetcher := &services.RouteFetcher{Reader: svc, Drivers: svc}
	dir := t.TempDir()
	start := time.Date(2025, 2, 14, 0, 0, 0, 0, time.Local)

	var buf bytes.Buffer
	if err := runFetch(context.Background(), &buf, fetcher, start, start, dir); err != nil {
		t.Fatalf("runFetch: %v", err)
	}

	routeDir := filepath.Join(dir, "routes_2025-02-14")
	if _, err := os.Stat(filepath.Join(routeDir, "02.14 Eric.csv")); err != nil {
		t.Fatalf("route csv: %v", err)
	}
	if _, err := os.Stat(filepath.Join(routeDir, "02.14 Hank.csv")); err == nil {
		t.Fatalf("unexpected csv for unrouted plan")
	}
	if _, err := os.Stat(filepath.Join(routeDir, tables.WorkbookFileName)); err != nil {
		t.Fatalf("workbook: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Wrote 1 routes (2 stops)") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "1 plans skipped without a route") {
		t.Fatalf("output = %q", out)
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2025, 2, 14, 0, 0, 0, 0, time.Local)

	got, err := parseDate("start-date", "", fallback)
	if err != nil || !got.Equal(fallback) {
		t.Fatalf("parseDate(empty) = %v, %v, want fallback", got, err)
	}

	got, err = parseDate("start-date", "2025-03-07", fallback)
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	if got.Month() != time.March || got.Day() != 7 {
		t.Fatalf("parseDate = %v, want 2025-03-07", got)
	}

	if _, err := parseDate("start-date", "03/07/2025", fallback); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}
