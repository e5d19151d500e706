package scan

// Distance computes the Damerau-Levenshtein edit distance between a and b:
// the minimum number of unit-cost insertions, deletions, substitutions and
// adjacent transpositions turning one into the other. This is the optimal
// string alignment variant, which never edits a transposed pair again; it
// agrees with unrestricted Damerau-Levenshtein at distance 1 but can report
// a larger value above that (e.g. "CA" to "ABC" is 3 here, 2 unrestricted).
// Package names are short, so the full dynamic-programming matrix is fine.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		d[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			v := min3(
				d[i-1][j]+1,      // deletion
				d[i][j-1]+1,      // insertion
				d[i-1][j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := d[i-2][j-2] + 1; t < v {
					v = t // transposition
				}
			}
			d[i][j] = v
		}
	}
	return d[len(ra)][len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
