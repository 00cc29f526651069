// Package daemon ties the job manager, history store, and configuration
// into a single lifecycle with flock-based locking to prevent multiple
// daemon instances from fighting over the same tools.
package daemon
