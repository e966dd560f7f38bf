package services

import (
	"delivery-route-builder/internal/domain"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid chunked input")
	ErrNoRouteUnits = errors.New("no route units in input")
)

// "02.14 Jane Doe #2" -> date "02.14", name "Jane Doe", index "2".
var labelPattern = regexp.MustCompile(`^(?:(\d{1,2}\.\d{1,2})\s+)?(.*?)(?:\s*#\s*(\d+))?$`)

// ParseDriverLabel splits a driver label into its optional date token, the
// driver's name and the optional route index.
func ParseDriverLabel(label string) (dateToken, name, index string) {
	label = strings.Join(strings.Fields(label), " ")
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		return "", label, ""
	}
	return m[1], strings.TrimSpace(m[2]), m[3]
}

// NextFriday returns the first Friday on or after now, at midnight.
func NextFriday(now time.Time) time.Time {
	days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// BuildRouteUnits groups chunked rows by driver label, in first-seen order.
// A date token in the label wins over start; otherwise start supplies it.
func BuildRouteUnits(rows []domain.ChunkedStop, start time.Time) ([]*domain.RouteUnit, error) {
	if len(rows) == 0 {
		return nil, ErrNoRouteUnits
	}

	byLabel := make(map[string]*domain.RouteUnit)
	units := make([]*domain.RouteUnit, 0)
	for i, row := range rows {
		label := strings.Join(strings.Fields(row.DriverLabel), " ")
		if label == "" {
			return nil, fmt.Errorf("%w: row %d has no driver label", ErrInvalidInput, i+1)
		}

		u, ok := byLabel[label]
		if !ok {
			dateToken, name, index := ParseDriverLabel(label)
			if name == "" {
				return nil, fmt.Errorf("%w: label %q has no driver name", ErrInvalidInput, label)
			}
			if dateToken == "" {
				dateToken = start.Format("01.02")
			}

			title := dateToken + " " + name
			if index != "" {
				title += " #" + index
			}

			u = &domain.RouteUnit{
				Title:      title,
				Label:      label,
				DriverName: name,
				DateToken:  dateToken,
			}
			byLabel[label] = u
			units = append(units, u)
		}
		u.Stops = append(u.Stops, row)
	}

	titles := make(map[string]string, len(units))
	for _, u := range units {
		if other, ok := titles[u.Title]; ok {
			return nil, fmt.Errorf("%w: labels %q and %q both produce title %q", ErrInvalidInput, other, u.Label, u.Title)
		}
		titles[u.Title] = u.Label

		if err := orderStops(u); err != nil {
			return nil, err
		}
	}

	return units, nil
}

// orderStops sorts by stop number when every row has one.
func orderStops(u *domain.RouteUnit) error {
	seen := make(map[int]struct{}, len(u.Stops))
	for _, s := range u.Stops {
		if s.StopNo <= 0 {
			return nil
		}
		if _, ok := seen[s.StopNo]; ok {
			return fmt.Errorf("%w: %q has stop number %d twice", ErrInvalidInput, u.Label, s.StopNo)
		}
		seen[s.StopNo] = struct{}{}
	}

	sort.SliceStable(u.Stops, func(i, j int) bool { return u.Stops[i].StopNo < u.Stops[j].StopNo })
	return nil
}
