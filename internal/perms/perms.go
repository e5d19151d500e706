package perms

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cpan-security/cpansentry/internal/report"
)

// ComaintCode is the permission level denoting non-exclusive maintenance
// rights. Flagged users may hold nothing stronger.
const ComaintCode = "c"

// Flagged users are PAUSE's virtual maintainers: NEEDHELP marks a module
// looking for a new maintainer, HANDOFF marks ownership handed off.
var flagged = map[string]bool{
	"NEEDHELP": true,
	"HANDOFF":  true,
}

// Result summarizes one audit pass over a 06perms file.
type Result struct {
	Scanned  int
	Warnings []report.Warning
}

// Clean returns the number of entries that raised no warning.
func (r Result) Clean() int {
	return r.Scanned - len(r.Warnings)
}

// Audit scans a 06perms permissions list. The header block up to the first
// blank line is discarded; each remaining line is package,user,code. Flagged
// users holding any code other than comaintainer produce a BadPermission
// warning. Malformed lines are skipped. The audit shares no state with the
// index pipeline.
func Audit(r io.Reader) (Result, error) {
	var res Result

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inHeader := true

	for scanner.Scan() {
		line := scanner.Text()

		if inHeader {
			if line == "" {
				inHeader = false
			}
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, ",", 3)
		if len(fields) < 3 {
			continue
		}
		user := fields[1]
		code := fields[2]
		res.Scanned++

		if flagged[user] && code != ComaintCode {
			res.Warnings = append(res.Warnings, report.BadPermission{
				User: user,
				Raw:  line,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("reading permissions: %w", err)
	}
	return res, nil
}
