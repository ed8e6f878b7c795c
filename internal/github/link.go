package github

import (
	"regexp"
	"strings"
)

var linkSegment = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// ParseNextLink returns the rel="next" URL of a Link header, or "" if none.
//
//	<https://api.github.com/user/1/repos?page=2>; rel="next", <…?page=5>; rel="last"
func ParseNextLink(header string) string {
	if header == "" {
		return ""
	}

	for _, part := range strings.Split(header, ",") {
		match := linkSegment.FindStringSubmatch(strings.TrimSpace(part))
		if match != nil && match[2] == "next" {
			return match[1]
		}
	}
	return ""
}
