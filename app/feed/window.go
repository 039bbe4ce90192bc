package feed

import (
	"regexp"
	"strconv"
	"time"
)

// WindowExtractor finds the validity window embedded in an alert description.
// ok is false when the description does not carry both a start and an end.
type WindowExtractor interface {
	Window(description string) (from, until time.Time, ok bool)
}

// timestampPattern matches "HH:MM DD-MM-YYYY".
var timestampPattern = regexp.MustCompile(`(\d{2}):(\d{2}) (\d{2})-(\d{2})-(\d{4})`)

// RegexWindowExtractor takes the first two timestamp matches as start and end,
// interpreted in loc.
type RegexWindowExtractor struct {
	loc *time.Location
}

func NewRegexWindowExtractor(loc *time.Location) *RegexWindowExtractor {
	if loc == nil {
		loc = time.Local
	}
	return &RegexWindowExtractor{loc: loc}
}

func (e *RegexWindowExtractor) Window(description string) (time.Time, time.Time, bool) {
	matches := timestampPattern.FindAllStringSubmatch(description, 2)
	if len(matches) < 2 {
		return time.Time{}, time.Time{}, false
	}

	from, ok := e.instant(matches[0])
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	until, ok := e.instant(matches[1])
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	return from, until, true
}

// instant builds the time from the captured fields. time.Date normalizes, so
// "24:00" is midnight of the following day and "31-11" rolls into December.
// Fields outside hour 0-24 (24 only with :00), minute 0-59, day 1-31 or
// month 1-12 are rejected.
func (e *RegexWindowExtractor) instant(match []string) (time.Time, bool) {
	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	day, _ := strconv.Atoi(match[3])
	month, _ := strconv.Atoi(match[4])
	year, _ := strconv.Atoi(match[5])

	switch {
	case hour > 24, hour == 24 && minute != 0:
		return time.Time{}, false
	case minute > 59:
		return time.Time{}, false
	case day < 1 || day > 31:
		return time.Time{}, false
	case month < 1 || month > 12:
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, e.loc), true
}
