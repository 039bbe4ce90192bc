package feed

import (
	"cmp"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const DefaultPhenomenon = "aviso"

type Parser struct {
	filterer *Filterer
	windows  WindowExtractor
}

func NewParser(windows WindowExtractor) *Parser {
	return &Parser{
		filterer: NewFilterer(),
		windows:  windows,
	}
}

// Run turns raw feed text into the alerts for one zone that are still valid at now.
// Output keeps feed document order.
func (p *Parser) Run(text string, zoneConfig *Config, now time.Time) ([]Record, error) {
	if kind := ClassifyPayload(text); kind != PayloadValid {
		slog.Warn("Feed payload rejected before parsing", "zone", zoneConfig.Name, "kind", kind.String())
		if zoneConfig.Settings.OnInvalidFeed == OnInvalidFeedEmpty {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("%w: payload is %s", ErrInvalidFeedFormat, kind)
	}

	candidates, err := p.candidates(text)
	if err != nil {
		return nil, err
	}

	kept := p.filterer.Run(candidates, zoneConfig.Filter())

	lower := newLowerCaser()
	records := make([]Record, 0, len(kept))
	for _, candidate := range kept {
		from, until, ok := p.windows.Window(candidate.Description)
		if !ok {
			slog.Debug("Alert skipped", "title", candidate.Title, "reason", "no validity window")
			continue
		}
		if until.Before(now) {
			slog.Debug("Alert skipped", "title", candidate.Title, "reason", "expired", "valid_until", until)
			continue
		}

		title := lower.String(candidate.Title)
		severity := ClassifySeverity(title)

		records = append(records, Record{
			Zone:        zoneConfig.TargetZone,
			Title:       candidate.Title,
			Description: candidate.Description,
			Phenomenon:  p.phenomenon(title),
			Severity:    severity,
			ValidFrom:   from,
			ValidUntil:  until,
			Style:       StyleFor(severity),
		})
	}

	slog.Debug("Feed parsed",
		"zone", zoneConfig.Name,
		"items", len(candidates),
		"in_zone", len(kept),
		"active", len(records))

	return records, nil
}

func (p *Parser) candidates(text string) ([]Candidate, error) {
	// gofeed parsers keep per-document state, so each run gets its own.
	parsed, err := gofeed.NewParser().ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFeed, err)
	}

	candidates := make([]Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:       item.Title,
			Description: item.Description,
		})
	}

	return candidates, nil
}

// phenomenon is the third dot-separated segment of an already lower-cased title.
func (p *Parser) phenomenon(title string) string {
	segments := strings.Split(title, ".")
	if len(segments) < 3 {
		return DefaultPhenomenon
	}
	return cmp.Or(strings.TrimSpace(segments[2]), DefaultPhenomenon)
}
