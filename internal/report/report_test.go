package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestReporter_SortsOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	warnings := []Warning{
		NamespaceMismatch{Name: "X::Wrong", Dist: "Y-Dist", WantPrefix: "Y::Dist"},
		Confusable{New: "A::Onee", NewDist: "DistA", Other: "A::One", OtherDist: "DistB"},
	}
	if err := r.Emit(warnings); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] > lines[1] {
		t.Errorf("output not sorted:\n%s", buf.String())
	}
	if !strings.Contains(lines[0], "A::Onee") {
		t.Errorf("first line = %q, want the confusable warning", lines[0])
	}
}

func TestReporter_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	warnings := []Warning{
		BadPermission{User: "NEEDHELP", Raw: "Some::Pkg,NEEDHELP,f"},
	}
	if err := r.Emit(warnings); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["type"] != "bad-permission" {
		t.Errorf("type = %v, want bad-permission", rec["type"])
	}
	if rec["user"] != "NEEDHELP" {
		t.Errorf("user = %v, want NEEDHELP", rec["user"])
	}
}

func TestReporter_EmptyIsSilent(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter(&buf, false).Emit(nil); err != nil {
		t.Fatalf("Emit(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Emit(nil) wrote %q", buf.String())
	}
}
