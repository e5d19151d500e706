package scan

import (
	"sort"
	"strings"

	"github.com/cpan-security/cpansentry/internal/index"
	"github.com/cpan-security/cpansentry/internal/report"
)

// Namespaces checks every new package against the namespace implied by its
// distribution: hyphens in the distribution name become "::" and the result
// must be a literal prefix of the package name.
//
// This is a plain prefix match, not a segment match: distribution Foo-Bar
// accepts Foo::Barley as well as Foo::Bar::Util. PAUSE behaves the same
// way, so the looseness is kept on purpose.
func Namespaces(snap *index.Snapshot, newPkgs []string) []report.Warning {
	probes := make([]string, len(newPkgs))
	copy(probes, newPkgs)
	sort.Strings(probes)

	var warnings []report.Warning
	for _, p := range probes {
		dist, ok := snap.Dist(p)
		if !ok {
			continue
		}
		prefix := strings.ReplaceAll(dist, "-", "::")
		if !strings.HasPrefix(p, prefix) {
			warnings = append(warnings, report.NamespaceMismatch{
				Name:       p,
				Dist:       dist,
				WantPrefix: prefix,
			})
		}
	}
	return warnings
}
