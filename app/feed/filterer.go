package feed

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run keeps candidates whose title names the target zone and not the excluded marker.
func (f *Filterer) Run(candidates []Candidate, filter ZoneFilter) []Candidate {
	lower := newLowerCaser()
	zone := lower.String(filter.TargetZone)
	marker := lower.String(filter.ExcludedMarker)

	kept := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if ok, reason := f.matches(lower.String(candidate.Title), zone, marker); !ok {
			slog.Debug("Alert skipped", "title", candidate.Title, "reason", reason)
			continue
		}
		kept = append(kept, candidate)
	}

	return kept
}

func (f *Filterer) matches(title, zone, marker string) (bool, string) {
	if !strings.Contains(title, zone) {
		return false, "zone not mentioned"
	}
	if marker != "" && strings.Contains(title, marker) {
		return false, "excluded marker present"
	}
	return true, ""
}

// A cases.Caser keeps state and must not be shared between goroutines.
func newLowerCaser() cases.Caser {
	return cases.Lower(language.Spanish)
}
