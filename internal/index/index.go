package index

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cpan-security/cpansentry/internal/distname"
)

// Snapshot is one parsed 02packages index. It is created wholesale by Parse
// and never mutated afterwards; a newer index supersedes it entirely.
type Snapshot struct {
	// Packages maps package name to owning distribution.
	Packages map[string]string
	// Dists maps distribution name to its packages in encounter order.
	Dists map[string][]string
}

// Dist returns the distribution owning the named package.
func (s *Snapshot) Dist(pkg string) (string, bool) {
	d, ok := s.Packages[pkg]
	return d, ok
}

// Parse reads a 02packages.details.txt index. The header block (everything
// up to the first blank line) is discarded. Each remaining line splits on
// runs of whitespace into package, version and release; lines with fewer
// fields and releases that do not name a distribution are skipped, which is
// expected for legacy non-distribution entries.
func Parse(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{
		Packages: make(map[string]string),
		Dists:    make(map[string][]string),
	}
	namer := distname.NewNamer()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inHeader := true

	for scanner.Scan() {
		line := scanner.Text()

		// Skip header until empty line
		if inHeader {
			if line == "" {
				inHeader = false
			}
			continue
		}
		if line == "" {
			continue
		}

		// Parse: Module::Name \t version \t A/AU/AUTHOR/Dist.tar.gz
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pkg := fields[0]
		release := fields[2]

		dist, ok := namer.Name(release)
		if !ok {
			continue
		}

		// Last writer wins on duplicate package names; a well-formed
		// index has none, but a malformed one must not crash us. The
		// distribution lists follow the package map: a package that
		// moves leaves its old distribution's list, and repeated
		// same-distribution encounters are not listed twice.
		prev, seen := snap.Packages[pkg]
		switch {
		case !seen:
			snap.Dists[dist] = append(snap.Dists[dist], pkg)
		case prev != dist:
			snap.Dists[prev] = removeName(snap.Dists[prev], pkg)
			if len(snap.Dists[prev]) == 0 {
				delete(snap.Dists, prev)
			}
			snap.Dists[dist] = append(snap.Dists[dist], pkg)
		}
		snap.Packages[pkg] = dist
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return snap, nil
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
