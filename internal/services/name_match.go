package services

import (
	"delivery-route-builder/internal/domain"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxTokenDistance = 2

// NormalizeName folds accents, case and spacing so "José and Ana" matches "JOSE & ANA".
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	padded := " " + strings.ToUpper(strings.Join(strings.Fields(folded), " ")) + " "
	padded = strings.ReplaceAll(padded, " AND ", " & ")
	return strings.TrimSpace(padded)
}

// Match tiers, best first.
const (
	tierExact = iota
	tierPrefix
	tierToken
	tierFuzzy
	tierNone
)

type guess struct {
	driver   domain.Driver
	tier     int
	distance int
}

// BestGuesses ranks active drivers against a label's driver name.
// Inactive drivers are never suggested.
func BestGuesses(name string, drivers []domain.Driver, limit int) []domain.Driver {
	want := NormalizeName(name)
	if want == "" || limit <= 0 {
		return nil
	}

	guesses := make([]guess, 0, len(drivers))
	for _, d := range drivers {
		if !d.Active {
			continue
		}
		tier, dist := matchTier(want, NormalizeName(d.Name))
		if tier == tierNone {
			continue
		}
		guesses = append(guesses, guess{driver: d, tier: tier, distance: dist})
	}

	sort.SliceStable(guesses, func(i, j int) bool {
		if guesses[i].tier != guesses[j].tier {
			return guesses[i].tier < guesses[j].tier
		}
		if guesses[i].distance != guesses[j].distance {
			return guesses[i].distance < guesses[j].distance
		}
		return guesses[i].driver.Name < guesses[j].driver.Name
	})

	if len(guesses) > limit {
		guesses = guesses[:limit]
	}

	out := make([]domain.Driver, 0, len(guesses))
	for _, g := range guesses {
		out = append(out, g.driver)
	}
	return out
}

func matchTier(want, have string) (int, int) {
	if have == "" {
		return tierNone, 0
	}
	if want == have {
		return tierExact, 0
	}
	if strings.HasPrefix(have, want) {
		return tierPrefix, len(have) - len(want)
	}

	wantTokens := strings.Fields(want)
	haveTokens := strings.Fields(have)
	for _, w := range wantTokens {
		for _, h := range haveTokens {
			if w == h {
				return tierToken, 0
			}
		}
	}

	best := -1
	for _, w := range wantTokens {
		if len(w) < 3 {
			continue
		}
		for _, h := range haveTokens {
			d := levenshtein.ComputeDistance(w, h)
			if best < 0 || d < best {
				best = d
			}
		}
	}
	if best >= 0 && best <= maxTokenDistance {
		return tierFuzzy, best
	}

	return tierNone, 0
}
