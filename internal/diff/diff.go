package diff

import (
	"sort"

	"github.com/cpan-security/cpansentry/internal/index"
)

// Newness holds the names present in the current snapshot but absent from
// the previous one. Both slices are sorted. Recomputed each run, never
// persisted.
type Newness struct {
	Packages []string
	Dists    []string
}

// Empty reports whether the diff found no new packages. An empty diff
// short-circuits the analysis stages.
func (n Newness) Empty() bool {
	return len(n.Packages) == 0
}

// Diff computes the packages and distributions that appeared between the
// previous and current snapshots.
func Diff(current, previous *index.Snapshot) Newness {
	var n Newness
	for pkg := range current.Packages {
		if _, ok := previous.Packages[pkg]; !ok {
			n.Packages = append(n.Packages, pkg)
		}
	}
	for dist := range current.Dists {
		if _, ok := previous.Dists[dist]; !ok {
			n.Dists = append(n.Dists, dist)
		}
	}
	sort.Strings(n.Packages)
	sort.Strings(n.Dists)
	return n
}
