// Package toolproc launches external tool processes and provides best-effort
// termination of the whole process tree.
//
// Launched processes expose their stdout and stderr as raw streams so callers
// can apply their own record framing. Termination never escalates or waits:
// the kill signal is sent once and any failure is reported to the caller for
// logging only.
package toolproc
