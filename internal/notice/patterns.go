// Package notice pulls recipient fields out of the plain text of a Korean
// administrative notice (수신 ... 귀하 (우NNNNN 주소) / (경유) block, 제목 line,
// 차량번호 table cell and submission deadline).
package notice

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/a3tai/notice-postmoa/internal/records"
)

// word matches what a Unicode-aware \w would: Go's \w is ASCII only.
const word = `[\p{L}\p{N}_]`

// digit matches any decimal digit, full-width ones included.
const digit = `\p{Nd}`

// The recipient block spans lines, so (?s) lets '.' cross newlines.
// Greedy groups take the last candidate before the (경유) line.
var (
	namePattern    = regexp.MustCompile(`(?s)수신\s+(.+)\s+귀하\s+\(우` + digit + `+\s+.+\)\n\(경유\)`)
	zipCodePattern = regexp.MustCompile(`(?s)수신\s+.+\s+귀하\s+\(우(` + digit + `+)\s+.+\)\n\(경유\)`)
	addressPattern = regexp.MustCompile(`(?s)수신\s+.+\s+귀하\s+\(우` + digit + `+\s+(.+)\)\n\(경유\)`)
	titlePattern   = regexp.MustCompile(`제목\s+(.+)`)
	vehiclePattern = regexp.MustCompile(`(?s)차량번호.+\n(` + word + `+\n?` + word + digit + `{4})`)
	dueDatePattern = regexp.MustCompile(`\n(` + digit + `+\.` + digit + `+\.` + digit + `+\.)`)
)

type field struct {
	column  string
	pattern *regexp.Regexp
}

var fields = []field{
	{records.ColumnName, namePattern},
	{records.ColumnZipCode, zipCodePattern},
	{records.ColumnAddress, addressPattern},
	{records.ColumnTitle, titlePattern},
	{records.ColumnVehicleNumber, vehiclePattern},
	{records.ColumnDueDate, dueDatePattern},
}

// Parse extracts every field from text. A field whose pattern does not
// match is left empty.
func Parse(text string) records.Record {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var r records.Record
	for _, f := range fields {
		// columns come from the records package, Set cannot fail here
		_ = r.Set(f.column, find(f.pattern, text))
	}
	return r
}

// find returns the first group of the first match, trimmed, with line
// breaks removed and full-width forms folded to their ASCII counterparts.
func find(p *regexp.Regexp, text string) string {
	m := p.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	v := strings.TrimSpace(width.Narrow.String(m[1]))
	return strings.ReplaceAll(v, "\n", "")
}
