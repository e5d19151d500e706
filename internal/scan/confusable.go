package scan

import (
	"sort"
	"unicode/utf8"

	"github.com/cpan-security/cpansentry/internal/index"
	"github.com/cpan-security/cpansentry/internal/report"
)

// DefaultDistance is the edit-distance threshold at which two package
// names from different distributions count as confusable.
const DefaultDistance = 1

// Scanner finds confusable name pairs among newly appeared packages.
type Scanner struct {
	distance int
}

// NewScanner creates a Scanner with the given threshold. Values below one
// fall back to DefaultDistance.
func NewScanner(distance int) *Scanner {
	if distance < 1 {
		distance = DefaultDistance
	}
	return &Scanner{distance: distance}
}

// Confusables scans every new package name against the current snapshot and
// reports names at exactly the threshold distance that belong to another
// distribution. Candidates are bucketed by name length first: a name whose
// length differs from the probe's by more than the threshold cannot be
// within the threshold under unit-cost edits, so its distance is never
// computed. That pruning is what keeps a full-index scan tractable.
// Lengths are counted in runes, the same unit Distance edits in.
func (s *Scanner) Confusables(snap *index.Snapshot, newPkgs []string) []report.Warning {
	buckets := make(map[int][]string)
	for name := range snap.Packages {
		n := utf8.RuneCountInString(name)
		buckets[n] = append(buckets[n], name)
	}
	for _, names := range buckets {
		sort.Strings(names)
	}

	probes := make([]string, len(newPkgs))
	copy(probes, newPkgs)
	sort.Strings(probes)

	var warnings []report.Warning
	for _, p := range probes {
		pDist := snap.Packages[p]
		pLen := utf8.RuneCountInString(p)
		for l := pLen - s.distance; l <= pLen+s.distance; l++ {
			for _, q := range buckets[l] {
				if q == p {
					continue
				}
				qDist := snap.Packages[q]
				// Name collisions inside one distribution are
				// expected and not reportable.
				if qDist == pDist {
					continue
				}
				if Distance(p, q) == s.distance {
					warnings = append(warnings, report.Confusable{
						New:       p,
						NewDist:   pDist,
						Other:     q,
						OtherDist: qDist,
					})
				}
			}
		}
	}
	return warnings
}
