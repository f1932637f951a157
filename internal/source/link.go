package source

import (
	"regexp"
	"strings"
)

var (
	schemeStripper = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://`)
	postIDPattern  = regexp.MustCompile(`^[0-9]+$`)
)

// Link captures what can be read from a social post URL.
type Link struct {
	Original string
	Host     string
	Handle   string
	PostID   string
}

// ParseLink normalizes a post URL such as https://x.com/someone/status/123.
// Unknown shapes still yield whatever host could be recovered.
func ParseLink(input string) Link {
	lower := strings.TrimSpace(input)
	lower = schemeStripper.ReplaceAllString(strings.ToLower(lower), "")
	original := strings.TrimSpace(input)

	// Trim query and fragment
	for _, sep := range []string{"?", "#"} {
		if idx := strings.Index(lower, sep); idx >= 0 {
			lower = lower[:idx]
		}
	}

	hostPart := lower
	path := ""
	if idx := strings.Index(lower, "/"); idx >= 0 {
		hostPart = lower[:idx]
		path = lower[idx+1:]
	}

	// Drop credentials if present (user:pass@)
	if idx := strings.LastIndex(hostPart, "@"); idx >= 0 {
		hostPart = hostPart[idx+1:]
	}
	if idx := strings.IndexRune(hostPart, ':'); idx >= 0 {
		hostPart = hostPart[:idx]
	}
	hostPart = strings.Trim(hostPart, ".")
	for _, prefix := range []string{"www.", "mobile."} {
		hostPart = strings.TrimPrefix(hostPart, prefix)
	}

	link := Link{Original: original, Host: hostPart}

	segments := compactSegments(strings.Split(path, "/"))
	if len(segments) >= 1 && segments[0] != "i" {
		link.Handle = segments[0]
	}
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "status" || segments[i] == "statuses" {
			if postIDPattern.MatchString(segments[i+1]) {
				link.PostID = segments[i+1]
			}
			break
		}
	}
	return link
}

func compactSegments(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
