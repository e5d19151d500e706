package distname

import (
	"path"
	"strings"
)

// Namer maps CPAN release paths to distribution names.
//
// A release path looks like "A/AU/AUTHOR/Dist-Name-1.23.tar.gz"; its
// distribution name is "Dist-Name". The same release recurs once per module
// it provides, so results are cached by the full release string.
type Namer struct {
	cache map[string]entry
}

type entry struct {
	name string
	ok   bool
}

// NewNamer creates a Namer with an empty cache. The cache lives as long as
// the Namer; construct one per run.
func NewNamer() *Namer {
	return &Namer{cache: make(map[string]entry)}
}

// Name resolves a release path to its distribution name. The second return
// value is false for releases that do not look like a distribution archive
// (loose scripts, bare module files, archives without a version suffix).
func (n *Namer) Name(release string) (string, bool) {
	if e, ok := n.cache[release]; ok {
		return e.name, e.ok
	}
	name, ok := parse(release)
	n.cache[release] = entry{name: name, ok: ok}
	return name, ok
}

var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.bz2", ".zip"}

func parse(release string) (string, bool) {
	base := path.Base(release)

	stripped := false
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			stripped = true
			break
		}
	}
	if !stripped {
		return "", false
	}

	// Trial releases carry a marker after the version: Dist-Name-1.23-TRIAL
	base = strings.TrimSuffix(base, "-TRIAL")

	// The last hyphen-separated component must be the version,
	// e.g. 1.23, v1.2.3, 0.01_02.
	i := strings.LastIndex(base, "-")
	if i <= 0 {
		return "", false
	}
	if !looksLikeVersion(base[i+1:]) {
		return "", false
	}

	return base[:i], true
}

func looksLikeVersion(v string) bool {
	v = strings.TrimPrefix(v, "v")
	if v == "" {
		return false
	}
	return v[0] >= '0' && v[0] <= '9'
}
