package progress

import "strings"

// diagnosticCap bounds how much stderr is retained for failure reports.
const diagnosticCap = 16 * 1024

// DiagnosticBuffer accumulates stderr records for inclusion in failure
// messages. Once the cap is reached no further records are appended; the
// head of a tool's stderr carries the actionable error, the tail is usually
// repeated progress noise.
type DiagnosticBuffer struct {
	b strings.Builder
}

// Append records one stderr line unless the buffer is already full.
func (d *DiagnosticBuffer) Append(record string) {
	if d.b.Len() >= diagnosticCap {
		return
	}
	d.b.WriteString(record)
	d.b.WriteByte('\n')
}

// String returns the accumulated diagnostics with surrounding whitespace
// trimmed.
func (d *DiagnosticBuffer) String() string {
	return strings.TrimSpace(d.b.String())
}

// Empty reports whether nothing has been recorded.
func (d *DiagnosticBuffer) Empty() bool {
	return d.b.Len() == 0
}
