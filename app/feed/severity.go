package feed

import (
	"encoding/json"
	"strings"
)

type Severity int

const (
	SeverityInformational Severity = iota
	SeverityModerate
	SeveritySevere
	SeverityExtreme
)

func (s Severity) String() string {
	switch s {
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	case SeverityExtreme:
		return "extreme"
	default:
		return "informational"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

type severityRule struct {
	keyword  string
	severity Severity
}

// Evaluated in order; the first keyword found wins.
var severityRules = []severityRule{
	{"rojo", SeverityExtreme},
	{"naranja", SeveritySevere},
	{"amarillo", SeverityModerate},
}

var severityStyles = map[Severity]string{
	SeverityInformational: "bg-info",
	SeverityModerate:      "bg-warning",
	SeveritySevere:        "bg-danger",
	SeverityExtreme:       "bg-dark",
}

// ClassifySeverity expects an already lower-cased title.
func ClassifySeverity(title string) Severity {
	for _, rule := range severityRules {
		if strings.Contains(title, rule.keyword) {
			return rule.severity
		}
	}
	return SeverityInformational
}

func StyleFor(s Severity) string {
	if style, ok := severityStyles[s]; ok {
		return style
	}
	return severityStyles[SeverityInformational]
}
