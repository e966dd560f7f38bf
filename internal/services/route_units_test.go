package services

import (
	"delivery-route-builder/internal/domain"
	"errors"
	"testing"
	"time"
)

func TestParseDriverLabel(t *testing.T) {
	tests := []struct {
		label, date, name, index string
	}{
		{"Jane", "", "Jane", ""},
		{"Jane  Doe #2", "", "Jane Doe", "2"},
		{"02.14 Eric", "02.14", "Eric", ""},
		{"2.7 Ann and Bo #10", "2.7", "Ann and Bo", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			date, name, index := ParseDriverLabel(tt.label)
			if date != tt.date || name != tt.name || index != tt.index {
				t.Fatalf("ParseDriverLabel(%q) = %q, %q, %q; want %q, %q, %q",
					tt.label, date, name, index, tt.date, tt.name, tt.index)
			}
		})
	}
}

func TestNextFriday(t *testing.T) {
	wed := time.Date(2025, 2, 12, 15, 0, 0, 0, time.UTC)
	if got := NextFriday(wed); !got.Equal(time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("NextFriday(wed) = %v", got)
	}
	fri := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)
	if got := NextFriday(fri); !got.Equal(time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("NextFriday(fri) = %v", got)
	}
}

func TestBuildRouteUnitsGroupsAndTitles(t *testing.T) {
	start := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	rows := []domain.ChunkedStop{
		{DriverLabel: "Jane #2", StopNo: 2, Name: "b"},
		{DriverLabel: "Eric", Name: "x"},
		{DriverLabel: "Jane #2", StopNo: 1, Name: "a"},
		{DriverLabel: "03.01 Hank", Name: "h"},
	}

	units, err := BuildRouteUnits(rows, start)
	if err != nil {
		t.Fatalf("build units: %v", err)
	}

	wantTitles := []string{"02.14 Jane #2", "02.14 Eric", "03.01 Hank"}
	if len(units) != len(wantTitles) {
		t.Fatalf("units = %d, want %d", len(units), len(wantTitles))
	}
	for i, want := range wantTitles {
		if units[i].Title != want {
			t.Fatalf("unit %d title = %q, want %q", i, units[i].Title, want)
		}
	}

	jane := units[0]
	if jane.DriverName != "Jane" || len(jane.Stops) != 2 || jane.Stops[0].Name != "a" {
		t.Fatalf("jane unit = %+v", jane)
	}
	if units[2].DateToken != "03.01" {
		t.Fatalf("label date token = %q, want 03.01", units[2].DateToken)
	}
}

func TestBuildRouteUnitsRejectsBadInput(t *testing.T) {
	start := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		rows []domain.ChunkedStop
		want error
	}{
		{"empty", nil, ErrNoRouteUnits},
		{"blank label", []domain.ChunkedStop{{DriverLabel: "  "}}, ErrInvalidInput},
		{"duplicate stop number", []domain.ChunkedStop{
			{DriverLabel: "Eric", StopNo: 1}, {DriverLabel: "Eric", StopNo: 1},
		}, ErrInvalidInput},
		{"colliding titles", []domain.ChunkedStop{
			{DriverLabel: "Eric"}, {DriverLabel: "02.14 Eric"},
		}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRouteUnits(tt.rows, start)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
