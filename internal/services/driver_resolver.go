package services

import (
	"context"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/ports"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var ErrResolutionAborted = errors.New("driver resolution aborted by operator")

// errRestart discards the mapping built so far and starts over.
var errRestart = errors.New("restart resolution")

// DriverResolver asks the operator to pick an active driver for every label.
type DriverResolver struct {
	Prompter   ports.Prompter
	MaxGuesses int
}

func NewDriverResolver(p ports.Prompter) *DriverResolver {
	return &DriverResolver{Prompter: p, MaxGuesses: 5}
}

// Roster orders drivers the way they are numbered for the operator.
// Roster numbers are 1-based indexes into the returned slice.
func Roster(drivers []domain.Driver) []domain.Driver {
	roster := make([]domain.Driver, len(drivers))
	copy(roster, drivers)
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].Name != roster[j].Name {
			return roster[i].Name < roster[j].Name
		}
		return roster[i].ID < roster[j].ID
	})
	return roster
}

// Resolve maps every label to an active driver. Labels with the same driver
// name (e.g. "Jane #1" and "Jane #2") are asked once. The mapping is only
// returned after the operator confirms it; on abort nothing is returned.
func (r *DriverResolver) Resolve(
	ctx context.Context,
	labels []string,
	drivers []domain.Driver,
) (map[string]domain.Driver, error) {
	if r.Prompter == nil {
		return nil, errors.New("resolve drivers: prompter is nil")
	}
	if len(labels) == 0 {
		return map[string]domain.Driver{}, nil
	}

	roster := Roster(drivers)
	names, byName := groupLabels(labels)

	r.printRoster(roster)
	for {
		mapping, err := r.resolveAll(ctx, names, byName, roster)
		if err != nil {
			return nil, err
		}

		err = r.confirm(ctx, labels, mapping)
		if errors.Is(err, errRestart) {
			r.Prompter.Say("Discarding all selections. Starting over.")
			continue
		}
		if err != nil {
			return nil, err
		}
		return mapping, nil
	}
}

// groupLabels returns distinct normalized driver names in first-seen order.
func groupLabels(labels []string) ([]string, map[string][]string) {
	names := make([]string, 0, len(labels))
	byName := make(map[string][]string)
	for _, label := range labels {
		_, name, _ := ParseDriverLabel(label)
		key := NormalizeName(name)
		if _, ok := byName[key]; !ok {
			names = append(names, key)
		}
		byName[key] = append(byName[key], label)
	}
	return names, byName
}

func (r *DriverResolver) resolveAll(
	ctx context.Context,
	names []string,
	byName map[string][]string,
	roster []domain.Driver,
) (map[string]domain.Driver, error) {
	mapping := make(map[string]domain.Driver)
	for _, name := range names {
		d, err := r.resolveOne(ctx, name, byName[name], roster)
		if err != nil {
			return nil, err
		}
		for _, label := range byName[name] {
			mapping[label] = d
		}
	}
	return mapping, nil
}

func (r *DriverResolver) resolveOne(
	ctx context.Context,
	name string,
	labels []string,
	roster []domain.Driver,
) (domain.Driver, error) {
	p := r.Prompter

	p.Say("")
	p.Say("Driver for %s:", strings.Join(quoteAll(labels), ", "))
	guesses := BestGuesses(name, roster, r.MaxGuesses)
	if len(guesses) == 0 {
		p.Say("  no close matches among active drivers")
	}
	for _, g := range guesses {
		p.Say("  best guess: %d. %s (%s)", rosterNumber(roster, g), g.Name, g.Email)
	}

	for {
		ans, err := p.Ask(ctx, "Enter roster number ('list' to show roster, 'q' to abort): ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return domain.Driver{}, ErrResolutionAborted
			}
			return domain.Driver{}, fmt.Errorf("resolve driver %q: %w", name, err)
		}

		switch strings.ToLower(ans) {
		case "q", "quit", "abort":
			return domain.Driver{}, ErrResolutionAborted
		case "list":
			r.printRoster(roster)
			continue
		}

		n, err := strconv.Atoi(ans)
		if err != nil || n < 1 || n > len(roster) {
			p.Say("Invalid selection %q. Enter a number from 1 to %d.", ans, len(roster))
			continue
		}

		d := roster[n-1]
		if !d.Active {
			p.Say("%s is inactive. Choose an active driver or activate them first.", d.Name)
			continue
		}
		return d, nil
	}
}

func (r *DriverResolver) confirm(ctx context.Context, labels []string, mapping map[string]domain.Driver) error {
	p := r.Prompter

	p.Say("")
	p.Say("Driver assignments:")
	for _, label := range labels {
		d := mapping[label]
		p.Say("  %-30s -> %s (%s)", label, d.Name, d.Email)
	}

	for {
		ans, err := p.Ask(ctx, "Confirm assignments? [y]es, [n]o to start over, [q]uit: ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return ErrResolutionAborted
			}
			return fmt.Errorf("confirm drivers: %w", err)
		}

		switch strings.ToLower(ans) {
		case "y", "yes":
			return nil
		case "n", "no":
			return errRestart
		case "q", "quit", "abort":
			return ErrResolutionAborted
		}
		p.Say("Please answer y, n or q.")
	}
}

func (r *DriverResolver) printRoster(roster []domain.Driver) {
	r.Prompter.Say("Drivers:")
	for i, d := range roster {
		r.Prompter.Say("%3d. %-30s %-30s %s", i+1, d.Name, d.Email, d.StatusLabel())
	}
}

func rosterNumber(roster []domain.Driver, d domain.Driver) int {
	for i, r := range roster {
		if r.ID == d.ID {
			return i + 1
		}
	}
	return 0
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strconv.Quote(s)
	}
	return out
}
