package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Warning is one finding of a run. Warnings are emitted and forgotten;
// nothing is persisted across runs.
type Warning interface {
	// Kind is a stable discriminator used in JSON output.
	Kind() string
	// Line is the human-readable rendering.
	Line() string
}

// Confusable reports a new package whose name sits within the configured
// edit distance of an existing package from another distribution.
type Confusable struct {
	New       string `json:"new"`
	NewDist   string `json:"new_dist"`
	Other     string `json:"other"`
	OtherDist string `json:"other_dist"`
}

func (c Confusable) Kind() string { return "confusable" }

func (c Confusable) Line() string {
	return fmt.Sprintf("new package %s (%s) is confusable with %s (%s)",
		c.New, c.NewDist, c.Other, c.OtherDist)
}

// NamespaceMismatch reports a new package outside the namespace implied by
// its distribution's name.
type NamespaceMismatch struct {
	Name       string `json:"name"`
	Dist       string `json:"dist"`
	WantPrefix string `json:"want_prefix"`
}

func (n NamespaceMismatch) Kind() string { return "namespace-mismatch" }

func (n NamespaceMismatch) Line() string {
	return fmt.Sprintf("new package %s is outside the namespace of its distribution %s (expected prefix %s)",
		n.Name, n.Dist, n.WantPrefix)
}

// BadPermission reports a flagged maintainer holding more than comaintainer
// permission.
type BadPermission struct {
	User string `json:"user"`
	Raw  string `json:"raw"`
}

func (b BadPermission) Kind() string { return "bad-permission" }

func (b BadPermission) Line() string {
	return fmt.Sprintf("%s may only hold comaintainer permission: %s", b.User, b.Raw)
}

// Reporter writes warnings line-oriented to w, sorted by their rendered
// line so output is stable and diffable across runs.
type Reporter struct {
	w         io.Writer
	jsonLines bool
}

// NewReporter creates a Reporter. With jsonLines set, each warning is
// additionally rendered as one JSON object per line instead of plain text.
func NewReporter(w io.Writer, jsonLines bool) *Reporter {
	return &Reporter{w: w, jsonLines: jsonLines}
}

// Emit sorts and writes the warnings.
func (r *Reporter) Emit(warnings []Warning) error {
	sorted := make([]Warning, len(warnings))
	copy(sorted, warnings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Line() < sorted[j].Line()
	})

	for _, w := range sorted {
		if r.jsonLines {
			if err := r.emitJSON(w); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(r.w, w.Line()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) emitJSON(w Warning) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding warning: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("encoding warning: %w", err)
	}
	fields["type"] = w.Kind()
	out, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding warning: %w", err)
	}
	if _, err := fmt.Fprintln(r.w, string(out)); err != nil {
		return err
	}
	return nil
}
