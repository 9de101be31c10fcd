package resolver

import (
	"sort"
	"strings"
)

// maxSuggestions caps how many alternatives are offered for one
// unresolved reference
const maxSuggestions = 3

// Suggest returns up to three known token paths that are plausible
// intentions for an unresolved path, ranked by shared trailing segments
// and then by shared leading segments.
func (ix *Index) Suggest(path string) []string {
	want := strings.Split(path, ".")

	type candidate struct {
		path  string
		score int
	}
	var candidates []candidate
	for _, known := range ix.Paths() {
		have := strings.Split(known, ".")
		score := trailingOverlap(want, have)*2 + leadingOverlap(want, have)
		if score > 0 {
			candidates = append(candidates, candidate{path: known, score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].path < candidates[j].path
	})

	var out []string
	for _, c := range candidates {
		out = append(out, "{"+c.path+"}")
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func trailingOverlap(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

func leadingOverlap(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
