package github

import (
	"regexp"
	"strings"
)

var diffHeaderRegex = regexp.MustCompile(`^diff --git a/(.*?) b/(.*?)$`)

// ChangedPaths extracts the paths touched by a unified diff, in diff order.
// The b/ side is used so renamed files resolve at the head ref.
func ChangedPaths(diff string) []string {
	var paths []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(diff, "\n") {
		matches := diffHeaderRegex.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
		if len(matches) < 3 {
			continue
		}
		path := matches[2]
		if path == "" {
			path = matches[1]
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	return paths
}
