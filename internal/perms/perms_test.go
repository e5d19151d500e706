package perms

import (
	"strings"
	"testing"

	"github.com/cpan-security/cpansentry/internal/report"
)

func audit(t *testing.T, body string) Result {
	t.Helper()
	res, err := Audit(strings.NewReader("File: 06perms.txt\n\n" + body))
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	return res
}

func TestAudit(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantScanned  int
		wantWarnings int
	}{
		{
			name:        "flagged comaintainer is clean",
			body:        "Some::Pkg,NEEDHELP,c\n",
			wantScanned: 1,
		},
		{
			name:         "flagged first-come is reported",
			body:         "Some::Pkg,NEEDHELP,f\n",
			wantScanned:  1,
			wantWarnings: 1,
		},
		{
			name:         "handoff with module permission is reported",
			body:         "Other::Pkg,HANDOFF,m\n",
			wantScanned:  1,
			wantWarnings: 1,
		},
		{
			name:        "ordinary users never trigger",
			body:        "Some::Pkg,ALICE,f\nSome::Pkg,BOB,m\nSome::Pkg,CAROL,c\n",
			wantScanned: 3,
		},
		{
			name:        "malformed lines are skipped",
			body:        "not-a-record\nSome::Pkg,NEEDHELP,c\n",
			wantScanned: 1,
		},
		{
			name:         "mixed",
			body:         "A::Pkg,NEEDHELP,c\nB::Pkg,HANDOFF,f\nC::Pkg,DAVE,m\n",
			wantScanned:  3,
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := audit(t, tt.body)
			if res.Scanned != tt.wantScanned {
				t.Errorf("Scanned = %d, want %d", res.Scanned, tt.wantScanned)
			}
			if len(res.Warnings) != tt.wantWarnings {
				t.Errorf("got %d warnings, want %d", len(res.Warnings), tt.wantWarnings)
			}
			if res.Clean() != tt.wantScanned-tt.wantWarnings {
				t.Errorf("Clean() = %d, want %d", res.Clean(), tt.wantScanned-tt.wantWarnings)
			}
		})
	}
}

func TestAudit_WarningCarriesRawLine(t *testing.T) {
	res := audit(t, "Some::Pkg,NEEDHELP,f\n")
	if len(res.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(res.Warnings))
	}
	b, ok := res.Warnings[0].(report.BadPermission)
	if !ok {
		t.Fatalf("warning is %T, want report.BadPermission", res.Warnings[0])
	}
	if b.User != "NEEDHELP" {
		t.Errorf("User = %q, want NEEDHELP", b.User)
	}
	if b.Raw != "Some::Pkg,NEEDHELP,f" {
		t.Errorf("Raw = %q", b.Raw)
	}
}
