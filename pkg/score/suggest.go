package score

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func similarity(a, b string) float64 {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	matches := 0
	for _, diff := range diffs {
		if diff.Type == diffmatchpatch.DiffEqual {
			matches += len(diff.Text)
		}
	}

	sums := len(a) + len(b)
	if sums > 0 {
		return 2.0 * float64(matches) / float64(sums)
	}

	return 1.0
}

// suggest returns the defined name closest to name, or "" when nothing is
// close enough to be a typo.
func suggest(name string, defined []string) string {
	name = strings.ToLower(name)

	best, bestRatio := "", 0.70
	for _, d := range defined {
		ratio := similarity(name, strings.ToLower(d))
		if ratio > bestRatio {
			best, bestRatio = d, ratio
		}
	}
	return best
}
