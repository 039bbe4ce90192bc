package feed

import (
	"strings"
)

type PayloadKind int

const (
	PayloadValid PayloadKind = iota
	PayloadErrorPage
	PayloadEmpty
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadValid:
		return "valid"
	case PayloadErrorPage:
		return "error_page"
	case PayloadEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Prefixes of bodies returned by the relay or upstream proxies instead of a feed.
var errorPagePrefixes = []string{"<!doctype", "<html", "<error>"}

// Substrings that identify a rejected request anywhere in the body.
var rejectionMarkers = []string{"rejected"}

// ClassifyPayload sniffs raw feed text before it is handed to the feed parser.
func ClassifyPayload(text string) PayloadKind {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return PayloadEmpty
	}

	head := strings.ToLower(trimmed[:min(len(trimmed), 16)])
	for _, prefix := range errorPagePrefixes {
		if strings.HasPrefix(head, prefix) {
			return PayloadErrorPage
		}
	}

	for _, marker := range rejectionMarkers {
		if strings.Contains(trimmed, marker) {
			return PayloadErrorPage
		}
	}

	return PayloadValid
}
