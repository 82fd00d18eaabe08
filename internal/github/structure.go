package github

import (
	"strings"

	"github.com/sevigo/repo-pilot/internal/core"
)

// FormatStructure renders a tree listing one entry per line as "[DIR] path" or
// "[FILE] path". Only the entry type decides the marker; path shape is ignored.
func FormatStructure(entries []core.TreeEntry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if e.IsDir() {
			sb.WriteString("[DIR] ")
		} else {
			sb.WriteString("[FILE] ")
		}
		sb.WriteString(e.Path)
	}
	return sb.String()
}

// ExcludeDirs drops entries located under any of the given directories.
func ExcludeDirs(entries []core.TreeEntry, dirs []string) []core.TreeEntry {
	if len(dirs) == 0 {
		return entries
	}
	out := make([]core.TreeEntry, 0, len(entries))
	for _, e := range entries {
		if !underAny(e.Path, dirs) {
			out = append(out, e)
		}
	}
	return out
}

func underAny(path string, dirs []string) bool {
	for _, d := range dirs {
		d = strings.Trim(d, "/")
		if d == "" {
			continue
		}
		if path == d || strings.HasPrefix(path, d+"/") {
			return true
		}
	}
	return false
}
